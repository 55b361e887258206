package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/2beens/elite30/internal/backup"
	"github.com/2beens/elite30/internal/cellstore"
	"github.com/2beens/elite30/internal/config"
	"github.com/2beens/elite30/internal/logging"
	"github.com/2beens/elite30/internal/progress"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// progress document google drive backup cmd

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("env-file", ".env", "optional .env file with secrets")
	logsPath := flag.String("logs-path", "", "backup logs file path (empty for stdout)")
	atTime := flag.String("at-time", "", "base time for the backup file name, RFC3339 (default now)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Debugf("no env file loaded from [%s]: %s", *envFile, err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logsCloser := logging.Setup(logging.LoggerSetupParams{
		LogFileName:      *logsPath,
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "elite30-progress-backup",
	})
	defer logsCloser.Close()

	log.Println("starting progress backup ...")

	baseTime := time.Now()
	if *atTime != "" {
		baseTime, err = time.Parse(time.RFC3339, *atTime)
		if err != nil {
			log.Fatalf("invalid -at-time [%s]: %s", *atTime, err)
		}
	}

	credentialsFile := os.Getenv("ELITE30_GOOGLE_CREDENTIALS_FILE")
	if credentialsFile == "" {
		log.Fatalln("google credentials file not set. use ELITE30_GOOGLE_CREDENTIALS_FILE")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, credentialsFile, baseTime); err != nil {
		log.Errorf("progress backup failed: %s", err)
		cancel()
		logsCloser.Close()
		os.Exit(1)
	}

	log.Println("progress backup done")
}

func run(ctx context.Context, cfg *config.Config, credentialsFile string, baseTime time.Time) (err error) {
	backend, err := cellstore.Open(ctx, cellstore.OpenParams{
		Config:                cfg,
		GoogleCredentialsFile: credentialsFile,
		RedisPassword:         os.Getenv("ELITE30_REDIS_PASS"),
		PostgresPassword:      os.Getenv("ELITE30_POSTGRES_PASS"),
		HttpClient:            &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			log.Errorf("close progress storage: %s", closeErr)
		}
	}()

	// the raw value, so a malformed document is backed up instead of the defaults
	raw, err := backend.Cell.Read(ctx)
	if err != nil {
		return fmt.Errorf("%w: read: %w", progress.ErrConnection, err)
	}

	s, err := backup.NewDriveBackupService(ctx, backend.Drive, cfg.DriveBackupFolder, cfg.DriveBackupShareWith)
	if err != nil {
		return err
	}

	_, err = s.Backup(ctx, raw, baseTime)
	return err
}
