package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/ultimate-scores/internal/platform/dburl"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

var migrationDirCandidates = []string{"./db/migrations", "/app/db/migrations"}

func main() {
	logger := logging.NewJSON(logging.LevelInfo)
	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, logger *logging.Logger) error {
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}
	disable, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")))
	dbURL = dburl.Normalize(dbURL, disable)

	dir, err := resolveMigrationsDir()
	if err != nil {
		return err
	}
	sourceURL := "file://" + filepath.ToSlash(dir)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	logger.Info("migrator ready", "source", sourceURL, "db_url", dburl.Redact(dbURL))
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	switch cmd := strings.ToLower(strings.TrimSpace(args[0])); cmd {
	case "up":
		if err := ignoreNoChange(m.Up(), logger); err != nil {
			return err
		}
		logger.Info("migrations applied", "source", sourceURL)
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil || steps <= 0 {
				return fmt.Errorf("down steps must be a positive integer, got %q", args[1])
			}
		}
		if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
			return err
		}
		logger.Info("migrations rolled back", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\ndirty: %t\n", version, dirty)
	case "force", "goto":
		if len(args) < 2 {
			return fmt.Errorf("%s requires a version argument", cmd)
		}
		version, err := strconv.ParseUint(strings.TrimSpace(args[1]), 10, 31)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if cmd == "force" {
			if err := m.Force(int(version)); err != nil {
				return fmt.Errorf("force version %d: %w", version, err)
			}
		} else if err := ignoreNoChange(m.Migrate(uint(version)), logger); err != nil {
			return err
		}
		logger.Info("migration version set", "command", cmd, "version", version)
	default:
		printUsage()
		os.Exit(2)
	}

	return nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func resolveMigrationsDir() (string, error) {
	candidates := append([]string{strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))}, migrationDirCandidates...)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}

	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, %s)", strings.Join(migrationDirCandidates, ", "))
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>|goto <v>>\n", name)
}
