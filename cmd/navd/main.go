package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsfix-ci/react-router-dispatcher/internal/navd"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("NAVD_CONFIG", ""), "path to navd config YAML")
	flag.Parse()

	var cfg navd.Config
	var err error
	if *configPath != "" {
		cfg, err = navd.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	} else {
		log.Fatal("a config file is required (routes cannot be defaulted): pass --config or set NAVD_CONFIG")
	}

	if addr := os.Getenv("NAVD_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if db := os.Getenv("NAVD_JOURNAL"); db != "" {
		cfg.JournalPath = db
	}

	server, err := navd.NewServer(cfg)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	fmt.Println("navd ready.")
	fmt.Printf("  Addr: %s | Journal: %s | Routes: %d\n", cfg.Addr, cfg.JournalPath, len(cfg.Routes))
	server.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	server.Stop()
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
