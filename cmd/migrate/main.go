package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"clientportal/internal/config"
	"clientportal/internal/migrations"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate <up|down|version|force VERSION|drop|reset>\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.SetupLogger()
	url := cfg.DatabaseURL()

	switch flag.Arg(0) {
	case "up":
		err = migrations.Up(url)
	case "down":
		err = migrations.Down(url)
	case "version":
		err = migrations.Version(url)
	case "force":
		if flag.NArg() < 2 {
			usage()
			os.Exit(2)
		}
		err = migrations.Force(url, flag.Arg(1))
	case "drop":
		err = migrations.Drop(url)
	case "reset":
		err = migrations.Reset(url)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
