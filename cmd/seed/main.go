package main

import (
	"flag"
	"os"

	"github.com/oggyb/glidefade/internal/config"
	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/logger"
)

func main() {
	minimal := flag.Bool("minimal", false, "load the three-user fixture instead of the demo data set")
	flag.Parse()

	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if *minimal {
		err = db.SeedMinimalTestData(database)
	} else {
		err = db.SeedTestData(database, log)
	}
	if err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed")
}
