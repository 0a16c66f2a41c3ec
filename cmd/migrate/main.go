package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/SigNoz/store-api-go/internal/db"
	"github.com/SigNoz/store-api-go/pkg/config"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s up|down|reset\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	mg, err := db.NewMigrator(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to open migrator: %v", err)
	}
	defer mg.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "reset":
		err = mg.Reset()
	default:
		mg.Close()
		log.Fatalf("Unknown command %q", cmd)
	}
	if err != nil {
		mg.Close()
		log.Fatalf("Migration failed: %v", err)
	}
}
