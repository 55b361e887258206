package backup_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/2beens/elite30/internal/backup"
	"github.com/2beens/elite30/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func TestNextBackupFileName(t *testing.T) {
	baseTime := time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)

	testCases := map[string]struct {
		existing []string
		expected string
	}{
		"no backups": {
			existing: nil,
			expected: "progress-7-1-2026.json",
		},
		"other days only": {
			existing: []string{"progress-6-1-2026.json", "progress-7-1-2025.json"},
			expected: "progress-7-1-2026.json",
		},
		"one for today": {
			existing: []string{"progress-7-1-2026.json"},
			expected: "progress-7-1-2026_2.json",
		},
		"several for today": {
			existing: []string{"progress-7-1-2026_2.json", "progress-7-1-2026.json", "progress-7-1-2026_3.json"},
			expected: "progress-7-1-2026_4.json",
		},
	}

	for caseName, tc := range testCases {
		t.Run(caseName, func(t *testing.T) {
			assert.Equal(t, tc.expected, backup.NextBackupFileName(tc.existing, baseTime))
		})
	}
}

// fakeDrive emulates the few drive v3 endpoints the backup service uses.
type fakeDrive struct {
	mutex       sync.Mutex
	folders     map[string]string // name -> id
	files       []string
	uploads     []string
	permissions []string
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/files":
		q := r.URL.Query().Get("q")
		files := []map[string]string{}
		if strings.Contains(q, "mimeType = 'application/vnd.google-apps.folder'") {
			for name, id := range f.folders {
				if strings.Contains(q, "name = '"+name+"'") {
					files = append(files, map[string]string{"id": id, "name": name})
				}
			}
		} else {
			for i, name := range f.files {
				files = append(files, map[string]string{"id": "file-" + string(rune('a'+i)), "name": name})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"files": files})
	case r.Method == http.MethodPost && r.URL.Path == "/files":
		var meta drive.File
		if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.folders[meta.Name] = "folder-new"
		_, _ = w.Write([]byte(`{"id":"folder-new"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/upload/drive/v3/files":
		body, _ := io.ReadAll(r.Body)
		f.uploads = append(f.uploads, string(body))
		name := "unknown"
		for _, candidate := range []string{"progress-7-1-2026.json", "progress-7-1-2026_2.json", "progress-7-1-2026_3.json"} {
			if strings.Contains(string(body), `"name":"`+candidate+`"`) {
				name = candidate
			}
		}
		f.files = append(f.files, name)
		_, _ = w.Write([]byte(`{"id":"uploaded-1","parents":["folder-new"]}`))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/permissions"):
		f.permissions = append(f.permissions, strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/files/"), "/permissions"))
		_, _ = w.Write([]byte(`{"id":"perm-1"}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestDriveService(t *testing.T, handler http.Handler) *drive.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	driveService, err := drive.NewService(
		context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return driveService
}

func TestDriveBackupService(t *testing.T) {
	ctx := context.Background()
	fake := &fakeDrive{folders: map[string]string{}}
	driveService := newTestDriveService(t, fake)

	s, err := backup.NewDriveBackupService(ctx, driveService, "elite30-progress-backup", "me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "folder-new", s.FolderID())
	assert.Equal(t, []string{"folder-new"}, fake.permissions)

	doc := progress.Default()
	doc.CurrentDay = 12
	raw, err := doc.Encode()
	require.NoError(t, err)
	baseTime := time.Date(2026, 1, 7, 22, 0, 0, 0, time.UTC)

	name, err := s.Backup(ctx, raw, baseTime)
	require.NoError(t, err)
	assert.Equal(t, "progress-7-1-2026.json", name)

	name, err = s.Backup(ctx, raw, baseTime)
	require.NoError(t, err)
	assert.Equal(t, "progress-7-1-2026_2.json", name)

	require.Len(t, fake.uploads, 2)
	assert.Contains(t, fake.uploads[0], `"current_day": 12`)
	assert.Len(t, fake.permissions, 3)

	// a malformed value is kept as is, not replaced by the default document
	truncated := `{"current_day":17,"start_date":"2026-01-0`
	name, err = s.Backup(ctx, truncated, baseTime)
	require.NoError(t, err)
	assert.Equal(t, "progress-7-1-2026_3.json", name)
	require.Len(t, fake.uploads, 3)
	assert.Contains(t, fake.uploads[2], truncated)
	assert.NotContains(t, fake.uploads[2], `"current_day":1,`)

	_, err = s.Backup(ctx, "  ", baseTime)
	require.ErrorIs(t, err, backup.ErrEmptySlot)
	assert.Len(t, fake.uploads, 3)

	// the folder is found, not created again
	s2, err := backup.NewDriveBackupService(ctx, driveService, "elite30-progress-backup", "")
	require.NoError(t, err)
	assert.Equal(t, "folder-new", s2.FolderID())
}

func TestDriveBackupService_ListFails(t *testing.T) {
	driveService := newTestDriveService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"insufficient permissions"}}`))
	}))

	_, err := backup.NewDriveBackupService(context.Background(), driveService, "elite30-progress-backup", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient permissions")
}
