package actionset

import (
	"fmt"
	"reflect"

	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

// #region types
// Provider produces action groups from the route context at dispatch
// time. Dynamic sets are compared by function identity only.
type Provider func(rctx route.Context) [][]string

// Set is the normalized representation of "what to run before revealing
// content": either a static list of action groups or a provider function
// stored as-is and invoked only at dispatch time.
type Set struct {
	groups   [][]string
	provider Provider
}

// #endregion types

// #region constructors
// Static normalizes a static action-set value:
//
//	"a"                      -> [["a"]]
//	[]string{"a", "b"}       -> [["a", "b"]]
//	[][]string{{"a"}, {"b"}} -> unchanged
//
// The []any shapes produced by YAML/JSON decoding are accepted the same
// way. Any other shape is a configuration error.
func Static(v any) (Set, error) {
	groups, err := normalize(v)
	if err != nil {
		return Set{}, err
	}
	return Set{groups: groups}, nil
}

// Of builds a static set directly from groups, without normalization.
func Of(groups ...[]string) Set {
	return Set{groups: groups}
}

// Dynamic wraps a provider function. The function is never invoked during
// normalization or comparison.
func Dynamic(p Provider) Set {
	return Set{provider: p}
}

// #endregion constructors

// #region accessors
// IsDynamic reports whether the set is backed by a provider function.
func (s Set) IsDynamic() bool {
	return s.provider != nil
}

// IsZero reports whether the set holds neither groups nor a provider.
func (s Set) IsZero() bool {
	return s.groups == nil && s.provider == nil
}

// Groups returns the normalized static groups (nil for dynamic sets).
func (s Set) Groups() [][]string {
	return s.groups
}

// Resolve produces the action groups to dispatch for the given route
// context: the static groups, or the provider output normalized here.
func (s Set) Resolve(rctx route.Context) [][]string {
	if s.provider == nil {
		return s.groups
	}
	return s.provider(rctx)
}

// #endregion accessors

// #region equality
// Equal reports whether two sets are the same for change detection:
// providers by function identity, static groups by deep value equality.
// A dynamic set never equals a static one.
func Equal(a, b Set) bool {
	if a.provider != nil || b.provider != nil {
		if a.provider == nil || b.provider == nil {
			return false
		}
		return reflect.ValueOf(a.provider).Pointer() == reflect.ValueOf(b.provider).Pointer()
	}
	return groupsEqual(a.groups, b.groups)
}

// groupsEqual compares two group lists element by element.
func groupsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// #endregion equality

// #region normalization
// normalize converts the polymorphic static shapes to a group list.
func normalize(v any) ([][]string, error) {
	switch val := v.(type) {
	case string:
		return [][]string{{val}}, nil
	case []string:
		return [][]string{val}, nil
	case [][]string:
		return val, nil
	case []any:
		return normalizeList(val)
	default:
		return nil, fmt.Errorf("action set: unsupported shape %T", v)
	}
}

// normalizeList handles decoded []any values: either a flat list of
// identifiers (one group) or a list of groups. Mixing the two is a
// configuration error.
func normalizeList(list []any) ([][]string, error) {
	if len(list) == 0 {
		return [][]string{}, nil
	}

	switch list[0].(type) {
	case string:
		group := make([]string, 0, len(list))
		for _, item := range list {
			id, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("action set: mixed identifier list, found %T", item)
			}
			group = append(group, id)
		}
		return [][]string{group}, nil
	case []any, []string:
		groups := make([][]string, 0, len(list))
		for _, item := range list {
			group, err := normalizeGroup(item)
			if err != nil {
				return nil, err
			}
			groups = append(groups, group)
		}
		return groups, nil
	default:
		return nil, fmt.Errorf("action set: unsupported element %T", list[0])
	}
}

// normalizeGroup converts one decoded group to []string.
func normalizeGroup(v any) ([]string, error) {
	switch g := v.(type) {
	case []string:
		return g, nil
	case []any:
		group := make([]string, 0, len(g))
		for _, item := range g {
			id, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("action set: group member %T is not an identifier", item)
			}
			group = append(group, id)
		}
		return group, nil
	default:
		return nil, fmt.Errorf("action set: mixed group list, found %T", v)
	}
}

// #endregion normalization
