package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jsfix-ci/react-router-dispatcher/internal/journal"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to navd journal")
	last := flag.Int("last", 20, "show N most recent cycles")
	cycle := flag.String("cycle", "", "show single cycle detail")
	trigger := flag.String("trigger", "", "filter list to one trigger type")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/navd.db [--last N] [--cycle id] [--trigger type] [--json]")
		os.Exit(2)
	}

	jnl, err := journal.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
		os.Exit(1)
	}
	defer jnl.Close()

	if *cycle != "" {
		if err := runDetailMode(jnl, *cycle, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(jnl, *last, *trigger, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	CycleID   string `json:"cycle_id"`
	Seq       uint64 `json:"seq"`
	Trigger   string `json:"trigger"`
	Location  string `json:"location"`
	Groups    int    `json:"groups"`
	Actions   int    `json:"actions"`
	Outcome   string `json:"outcome"`
	Duration  string `json:"duration,omitempty"`
	StartedAt string `json:"started_at"`
}

func runListMode(jnl *journal.Journal, last int, triggerFilter string, jsonOut bool) error {
	records, err := jnl.ListCycles(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no cycles found")
		return nil
	}

	// ListCycles returns DESC, reverse for chronological.
	var rows []listRow
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if triggerFilter != "" && r.Trigger != triggerFilter {
			continue
		}
		rows = append(rows, toListRow(r))
	}

	if jsonOut {
		return printJSON(rows)
	}
	printListTable(rows)

	stats, err := jnl.Summary()
	if err != nil {
		return err
	}
	fmt.Printf("\nOutcomes: %d total, %d ok, %d failed, %d superseded, %d pending\n",
		stats.Total, stats.OK, stats.Failed, stats.Superseded, stats.Pending)
	return nil
}

func toListRow(r journal.CycleRecord) listRow {
	row := listRow{
		CycleID:   r.CycleID,
		Seq:       r.Seq,
		Trigger:   r.Trigger,
		Location:  r.Location,
		Groups:    len(r.Groups),
		Outcome:   r.Outcome,
		StartedAt: r.StartedAt.Format("2006-01-02T15:04:05Z"),
	}
	for _, g := range r.Groups {
		row.Actions += len(g)
	}
	if row.Outcome == "" {
		row.Outcome = "pending"
	}
	if !r.ResolvedAt.IsZero() {
		row.Duration = r.ResolvedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
	}
	return row
}

func printListTable(rows []listRow) {
	fmt.Printf("%-9s  %4s  %-16s  %-24s  %6s  %-11s  %9s  %s\n",
		"Cycle", "Seq", "Trigger", "Location", "Acts", "Outcome", "Duration", "Started")
	fmt.Printf("%-9s+-%4s+-%-16s+-%-24s+-%6s+-%-11s+-%9s+-%s\n",
		"---------", "----", "----------------", "------------------------",
		"------", "-----------", "---------", "--------------------")

	for _, r := range rows {
		dur := "—"
		if r.Duration != "" {
			dur = r.Duration
		}
		fmt.Printf("%-9s  %4d  %-16s  %-24s  %6d  %-11s  %9s  %s\n",
			shortID(r.CycleID), r.Seq, r.Trigger, truncate(r.Location, 24),
			r.Actions, r.Outcome, dur, r.StartedAt)
	}
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	CycleID    string     `json:"cycle_id"`
	Seq        uint64     `json:"seq"`
	Trigger    string     `json:"trigger"`
	Location   string     `json:"location"`
	Groups     [][]string `json:"groups"`
	Outcome    string     `json:"outcome"`
	Error      string     `json:"error,omitempty"`
	StartedAt  string     `json:"started_at"`
	ResolvedAt string     `json:"resolved_at,omitempty"`
}

func runDetailMode(jnl *journal.Journal, cycleID string, jsonOut bool) error {
	records, err := jnl.ListCycles(0)
	if err != nil {
		return err
	}

	var rec *journal.CycleRecord
	for i := range records {
		if records[i].CycleID == cycleID || strings.HasPrefix(records[i].CycleID, cycleID) {
			if rec != nil {
				return fmt.Errorf("cycle id %q is ambiguous", cycleID)
			}
			rec = &records[i]
		}
	}
	if rec == nil {
		return fmt.Errorf("cycle %q not found", cycleID)
	}

	out := detailOutput{
		CycleID:   rec.CycleID,
		Seq:       rec.Seq,
		Trigger:   rec.Trigger,
		Location:  rec.Location,
		Groups:    rec.Groups,
		Outcome:   rec.Outcome,
		Error:     rec.Error,
		StartedAt: rec.StartedAt.Format("2006-01-02T15:04:05Z"),
	}
	if out.Outcome == "" {
		out.Outcome = "pending"
	}
	if !rec.ResolvedAt.IsZero() {
		out.ResolvedAt = rec.ResolvedAt.Format("2006-01-02T15:04:05Z")
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Cycle:    %s\n", out.CycleID)
	fmt.Printf("Seq:      %d\n", out.Seq)
	fmt.Printf("Trigger:  %s\n", out.Trigger)
	fmt.Printf("Location: %s\n", out.Location)
	fmt.Printf("Outcome:  %s\n", out.Outcome)
	if out.Error != "" {
		fmt.Printf("Error:    %s\n", out.Error)
	}
	fmt.Printf("Started:  %s\n", out.StartedAt)
	if out.ResolvedAt != "" {
		fmt.Printf("Resolved: %s\n", out.ResolvedAt)
	}

	fmt.Printf("\nAction groups:\n")
	for i, g := range out.Groups {
		fmt.Printf("  %d: %s\n", i, strings.Join(g, ", "))
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// #endregion output
