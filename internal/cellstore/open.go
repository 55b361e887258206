package cellstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/2beens/elite30/internal/config"
	"github.com/2beens/elite30/internal/db"
	"github.com/2beens/elite30/internal/progress"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"google.golang.org/api/drive/v3"
)

var ErrMissingCredentials = errors.New("google credentials not provided")

type OpenParams struct {
	Config *config.Config
	// GoogleCredentialsFile is a service account json key file (sheets backend, drive backups).
	GoogleCredentialsFile string
	RedisPassword         string
	PostgresPassword      string
	// HttpClient is used for google api calls, e.g. an otelhttp traced client.
	HttpClient     *http.Client
	TracingEnabled bool
}

// Backend is an opened progress cell along with everything it holds open.
type Backend struct {
	Cell progress.Cell
	// Drive is set when google credentials were available.
	Drive *drive.Service
	// Redis is set when a redis host is configured, regardless of the storage backend.
	Redis *redis.Client
	// Collectors are extra prometheus collectors, e.g. postgres pool stats.
	Collectors []prometheus.Collector

	closers []func() error
}

// Open creates the cell selected by the storage_backend config.
func Open(ctx context.Context, params OpenParams) (_ *Backend, err error) {
	cfg := params.Config
	b := &Backend{}
	defer func() {
		if err != nil {
			if closeErr := b.Close(); closeErr != nil {
				log.Errorf("close partially opened backend: %s", closeErr)
			}
		}
	}()

	if cfg.RedisHost != "" {
		b.Redis = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.TracingEnabled {
			b.Redis.AddHook(redisotel.NewTracingHook())
		}
		b.closers = append(b.closers, b.Redis.Close)

		rdbStatus := b.Redis.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	if params.GoogleCredentialsFile != "" {
		credentialsJson, err := os.ReadFile(params.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		sheetsService, driveService, err := NewGoogleServices(ctx, credentialsJson, params.HttpClient)
		if err != nil {
			return nil, err
		}
		b.Drive = driveService

		if cfg.StorageBackend == config.StorageBackendSheets {
			spreadsheetID := cfg.SpreadsheetID
			if spreadsheetID == "" {
				spreadsheetID, err = FindSpreadsheetID(ctx, driveService, cfg.SpreadsheetName)
				if err != nil {
					return nil, err
				}
				log.Debugf("spreadsheet [%s] found: %s", cfg.SpreadsheetName, spreadsheetID)
			}
			b.Cell = NewSheets(sheetsService, spreadsheetID, cfg.SheetCell)
		}
	}

	switch cfg.StorageBackend {
	case config.StorageBackendSheets:
		if b.Cell == nil {
			return nil, fmt.Errorf("%w: sheets backend needs a service account key", ErrMissingCredentials)
		}
	case config.StorageBackendRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("%w: redis backend without redis host", config.ErrInvalidConfig)
		}
		b.Cell = NewRedis(b.Redis, cfg.RedisKey)
	case config.StorageBackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			MaxConns:       4,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		b.closers = append(b.closers, func() error {
			log.Debugln("closing db pool ...")
			dbPool.Close() // blocking operation
			log.Debugln("db pool closed")
			return nil
		})

		pgCell, err := NewPostgres(ctx, dbPool, cfg.SlotName)
		if err != nil {
			return nil, err
		}
		b.Cell = pgCell
		b.Collectors = append(b.Collectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	case config.StorageBackendSQLite:
		sqliteCell, err := OpenSQLite(ctx, cfg.SQLitePath, cfg.SlotName)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, sqliteCell.Close)
		b.Cell = sqliteCell
	case config.StorageBackendMemory:
		b.Cell = NewMemory()
	default:
		return nil, fmt.Errorf("%w: unknown storage backend [%s]", config.ErrInvalidConfig, cfg.StorageBackend)
	}

	if cfg.CacheTTLSeconds > 0 && cfg.StorageBackend != config.StorageBackendMemory {
		b.Cell = NewCached(b.Cell, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}

	log.Infof("progress storage backend: %s", cfg.StorageBackend)
	return b, nil
}

// Close releases the backend connections, last opened first.
func (b *Backend) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}
	b.closers = nil
	return err
}
