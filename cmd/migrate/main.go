// Command migrate applies or reverts the embedded postgres migrations.
//
//	migrate up
//	migrate down
package main

import (
	"fmt"
	"os"

	"github.com/cinematalkiez/blackhole/internal/config"
	"github.com/cinematalkiez/blackhole/internal/logger"
	"github.com/cinematalkiez/blackhole/migrations"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|down>")
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.App.Env)
	defer log.Sync()

	if cfg.DB.Driver != "postgres" {
		log.Fatal("migrations only run against postgres; sqlite uses AutoMigrate",
			zap.String("driver", cfg.DB.Driver))
	}

	var err error
	switch os.Args[1] {
	case "up":
		err = migrations.Run(cfg.DB.URL(), log)
	case "down":
		err = migrations.Rollback(cfg.DB.URL(), log)
	default:
		fmt.Fprintln(os.Stderr, "usage: migrate <up|down>")
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("migration command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}
