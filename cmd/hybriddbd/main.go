// Package main provides the entry point for hybriddbd.
//
// hybriddbd boots a Database from a config file, runs a fixed demo
// sequence touching the row, columnar and vector tiers, and exits. It
// is a wiring demonstration, not a server: there is no network
// listener here, by design.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hybriddb/hybriddb/internal/adapters"
	"github.com/hybriddb/hybriddb/internal/db"
	"github.com/hybriddb/hybriddb/internal/dbconfig"
	"github.com/hybriddb/hybriddb/internal/infra/buildinfo"
	"github.com/hybriddb/hybriddb/internal/storage/columnar"
	"github.com/hybriddb/hybriddb/internal/telemetry/logger"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "hybriddbd",
		Usage:   "hybriddb bootstrap and tier demonstration",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML configuration file",
				EnvVars: []string{"HYBRIDDB_CONFIG"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := dbconfig.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stdout})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting hybriddbd", "version", buildinfo.Version, "data_dir", cfg.DataDir, "row_engine", cfg.Row.Engine)

	reg := metric.NewRegistry(nil)

	database, err := db.Open(cfg, reg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	defer func() {
		log.Info("closing database")
		if err := database.Close(); err != nil {
			log.Error("close database", "error", err)
		}
	}()

	if err := runDemo(database, log); err != nil {
		return fmt.Errorf("demo sequence: %w", err)
	}

	stats, err := database.Statistics()
	if err != nil {
		return fmt.Errorf("collect statistics: %w", err)
	}
	log.Info("run complete", "stats", stats, "cache_hit_ratio", reg.CacheHitRatio())

	return nil
}

// runDemo exercises the row, columnar and vector tiers end to end so a
// fresh data directory always proves out all three on first boot.
func runDemo(database *db.Database, log logger.Logger) error {
	if err := demoRowTier(database, log); err != nil {
		return err
	}
	if err := demoColumnarTier(database, log); err != nil {
		return err
	}
	return demoVectorTier(database, log)
}

func demoRowTier(database *db.Database, log logger.Logger) error {
	users, err := adapters.NewTable("users", adapters.Schema{
		"id":   "int",
		"name": "str",
		"age":  "int",
	}, database.Row())
	if err != nil {
		return err
	}

	id, err := users.Insert(map[string]any{"name": "ada", "age": 30})
	if err != nil {
		return err
	}

	if _, err := users.Update(adapters.Where{"id": id}, map[string]any{"age": 31}); err != nil {
		return err
	}

	rows, err := users.Select(adapters.Where{"name": "ada"})
	if err != nil {
		return err
	}
	log.Info("row tier demo", "table", "users", "rows", rows)

	sessions, err := adapters.NewCollection("sessions", database.Row())
	if err != nil {
		return err
	}
	sessionID, err := sessions.InsertOne(map[string]any{"user": "ada", "hits": 1.0})
	if err != nil {
		return err
	}
	if _, err := sessions.UpdateOne(adapters.Where{"_id": sessionID}, adapters.Update{"$inc": {"hits": 1.0}}); err != nil {
		return err
	}
	log.Info("row tier demo", "collection", "sessions", "session_id", sessionID)
	return nil
}

func demoColumnarTier(database *db.Database, log logger.Logger) error {
	table, err := database.Columnar().CreateTable("events", columnar.Schema{
		"latency_ms": columnar.TypeFloat64,
		"status":     columnar.TypeInt64,
	})
	if err != nil {
		return err
	}

	if err := table.InsertMany([]columnar.Row{
		{"latency_ms": 12.5, "status": int64(200)},
		{"latency_ms": 48.1, "status": int64(200)},
		{"latency_ms": 301.9, "status": int64(500)},
	}); err != nil {
		return err
	}

	avg, err := table.Aggregate("latency_ms", "avg")
	if err != nil {
		return err
	}
	log.Info("columnar tier demo", "table", "events", "avg_latency_ms", avg, "rows", table.Count())
	return nil
}

func demoVectorTier(database *db.Database, log logger.Logger) error {
	index, err := database.Vector().CreateIndex("embeddings", 4)
	if err != nil {
		return err
	}

	if _, err := index.Add([]float32{1, 0, 0, 0}, "doc-a"); err != nil {
		return err
	}
	if _, err := index.Add([]float32{0, 1, 0, 0}, "doc-b"); err != nil {
		return err
	}

	matches, err := index.Search([]float32{0.9, 0.1, 0, 0}, 1)
	if err != nil {
		return err
	}
	log.Info("vector tier demo", "index", "embeddings", "top_match", matches)
	return nil
}
