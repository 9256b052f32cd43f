// Command seed loads the programs, courses, lessons, badges and static pages the site
// ships with, plus the first admin account from config. Re-running it is safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/database"
	applogger "ourcodingkiddos/backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("OCK_CONFIG"), "config file path")
	contentPath := flag.String("content", "", "seed content YAML (defaults to the embedded content)")
	overwrite := flag.Bool("overwrite", false, "update rows that already exist instead of skipping them")
	dryRun := flag.Bool("dry-run", false, "validate the content and exit")
	flag.Parse()

	_ = godotenv.Load()

	data := embeddedContent
	if *contentPath != "" {
		b, err := os.ReadFile(*contentPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read content: %v\n", err)
			os.Exit(1)
		}
		data = b
	}
	doc, err := ParseDocument(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid seed content:\n%v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		fmt.Printf("content ok: %d programs, %d courses, %d badges, %d pages\n",
			len(doc.Programs), len(doc.Courses), len(doc.Badges), len(doc.Pages))
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	seeder := NewSeeder(repository.NewRepository(db), *overwrite, logger)
	if err := seeder.Run(ctx, doc, &cfg.Seed); err != nil {
		logger.Fatal("seed failed, nothing was written", zap.Error(err))
	}

	kinds := make([]string, 0, len(seeder.Result))
	for k := range seeder.Result {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		c := seeder.Result[k]
		logger.Info("seeded", zap.String("kind", k),
			zap.Int("created", c.Created), zap.Int("updated", c.Updated), zap.Int("skipped", c.Skipped))
	}
}
