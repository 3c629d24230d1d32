package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/noah-isme/repairshop-api/internal/db"
	"github.com/noah-isme/repairshop-api/internal/obs"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("init migrator")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Error().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrator")
		}
	}()

	if *down {
		if err := db.MigrateDown(m); err != nil {
			logger.Fatal().Err(err).Msg("migrate down")
		}
		logger.Info().Msg("migrations rolled back")
		return
	}
	if err := db.MigrateUp(m); err != nil {
		logger.Fatal().Err(err).Msg("migrate up")
	}
	version, dirty, err := m.Version()
	if err != nil {
		logger.Warn().Err(err).Msg("read migration version")
		return
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
}
