package cellstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/2beens/elite30/internal/cellstore"
	"github.com/2beens/elite30/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	testCases := map[string]struct {
		cfg         *config.Config
		expectedErr error
		checkCell   func(t *testing.T, b *cellstore.Backend)
	}{
		"memory": {
			cfg: &config.Config{StorageBackend: config.StorageBackendMemory, CacheTTLSeconds: 10},
			checkCell: func(t *testing.T, b *cellstore.Backend) {
				assert.IsType(t, &cellstore.Memory{}, b.Cell)
			},
		},
		"sqlite": {
			cfg: &config.Config{
				StorageBackend: config.StorageBackendSQLite,
				SQLitePath:     filepath.Join(t.TempDir(), "progress.db"),
				SlotName:       "progress",
			},
			checkCell: func(t *testing.T, b *cellstore.Backend) {
				assert.IsType(t, &cellstore.SQLite{}, b.Cell)
			},
		},
		"sqlite cached": {
			cfg: &config.Config{
				StorageBackend:  config.StorageBackendSQLite,
				SQLitePath:      filepath.Join(t.TempDir(), "progress.db"),
				SlotName:        "progress",
				CacheTTLSeconds: 5,
			},
			checkCell: func(t *testing.T, b *cellstore.Backend) {
				assert.IsType(t, &cellstore.Cached{}, b.Cell)
			},
		},
		"sheets without credentials": {
			cfg:         &config.Config{StorageBackend: config.StorageBackendSheets},
			expectedErr: cellstore.ErrMissingCredentials,
		},
		"redis without host": {
			cfg:         &config.Config{StorageBackend: config.StorageBackendRedis},
			expectedErr: config.ErrInvalidConfig,
		},
		"unknown backend": {
			cfg:         &config.Config{StorageBackend: "floppy"},
			expectedErr: config.ErrInvalidConfig,
		},
	}

	for caseName, tc := range testCases {
		t.Run(caseName, func(t *testing.T) {
			b, err := cellstore.Open(ctx, cellstore.OpenParams{Config: tc.cfg})
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			defer func() {
				require.NoError(t, b.Close())
			}()

			assert.Nil(t, b.Drive)
			assert.Nil(t, b.Redis)
			tc.checkCell(t, b)
			testCellRoundTrip(t, b.Cell)
		})
	}
}

func TestOpen_BadCredentialsFile(t *testing.T) {
	_, err := cellstore.Open(context.Background(), cellstore.OpenParams{
		Config:                &config.Config{StorageBackend: config.StorageBackendSheets},
		GoogleCredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	require.Error(t, err)
}
