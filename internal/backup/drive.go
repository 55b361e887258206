package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/2beens/elite30/internal/cellstore"
	"github.com/2beens/elite30/internal/progress"
	"github.com/2beens/elite30/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/drive/v3"
)

const folderMimeType = "application/vnd.google-apps.folder"

// ErrEmptySlot means there is no stored progress to back up.
var ErrEmptySlot = errors.New("progress slot is empty")

// DriveBackupService uploads progress document snapshots into one google drive folder.
type DriveBackupService struct {
	service   *drive.Service
	folderID  string
	shareWith string
}

// NewDriveBackupService finds the backups folder by name, creating it if missing.
// If shareWith is set, created folders and files are shared with that user as reader.
func NewDriveBackupService(
	ctx context.Context,
	driveService *drive.Service,
	folderName string,
	shareWith string,
) (*DriveBackupService, error) {
	s := &DriveBackupService{
		service:   driveService,
		shareWith: shareWith,
	}

	folderQuery := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, cellstore.DriveQueryValue(folderName))
	folders, err := driveService.
		Files.List().
		Q(folderQuery).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list backup folders: %w", err)
	}

	switch len(folders.Files) {
	case 0:
		log.Printf("backups folder [%s] not found, creating ...", folderName)
		s.folderID, err = s.createFolder(ctx, folderName)
		if err != nil {
			return nil, fmt.Errorf("create backups folder: %w", err)
		}
		log.Printf("new backups folder created: %s", s.folderID)
	case 1:
		s.folderID = folders.Files[0].Id
		log.Debugf("backups folder found, %s: %s", folderName, s.folderID)
	default:
		s.folderID = folders.Files[0].Id
		log.Warnf("attention: found %d backups folders, will take the first one: %s", len(folders.Files), s.folderID)
	}

	return s, nil
}

func (s *DriveBackupService) FolderID() string {
	return s.folderID
}

// Backup uploads the raw stored progress value as a new, uniquely named json file
// and returns its name. A value that does not decode is still uploaded as is.
func (s *DriveBackupService) Backup(ctx context.Context, raw string, baseTime time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalBackupTracer.Start(ctx, "backup.drive.backup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptySlot
	}

	content := []byte(raw)
	if doc, decodeErr := progress.Decode(raw); decodeErr != nil {
		log.Warnf("stored progress value is malformed (%s), backing it up unchanged", decodeErr)
		span.SetAttributes(attribute.Bool("malformed", true))
	} else {
		log.Debugf("backing up progress, current day %d, completed days %d", doc.CurrentDay, doc.CompletedDays())
		var indented bytes.Buffer
		if err := json.Indent(&indented, content, "", "  "); err == nil {
			content = indented.Bytes()
		}
	}

	existing, err := s.backupFileNames(ctx)
	if err != nil {
		return "", fmt.Errorf("list backup files: %w", err)
	}

	fileName := NextBackupFileName(existing, baseTime)
	span.SetAttributes(attribute.String("file", fileName))

	fileMeta := &drive.File{
		Name:     fileName,
		MimeType: "application/json",
		Parents:  []string{s.folderID},
	}
	created, err := s.service.
		Files.Create(fileMeta).
		Fields("id, parents").
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%s: create backup file: %w", fileName, err)
	}

	if err := s.share(ctx, created.Id); err != nil {
		return fileName, fmt.Errorf("%s: share backup file: %w", fileName, err)
	}

	log.Printf("progress backup saved: %s (%s), %d bytes", fileName, created.Id, len(content))
	return fileName, nil
}

// NextBackupFileName returns progress-<day>-<month>-<year>.json, adding a _<n> suffix
// when that name is already taken.
func NextBackupFileName(existing []string, baseTime time.Time) string {
	base := fmt.Sprintf("progress-%d-%d-%d", baseTime.Day(), baseTime.Month(), baseTime.Year())
	name := base + ".json"
	for n := 2; slices.Contains(existing, name); n++ {
		name = fmt.Sprintf("%s_%d.json", base, n)
	}
	return name
}

func (s *DriveBackupService) backupFileNames(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", cellstore.DriveQueryValue(s.folderID), folderMimeType)

	var names []string
	err := s.service.
		Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, createdTime)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				names = append(names, f.Name)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	return names, nil
}

func (s *DriveBackupService) createFolder(ctx context.Context, name string) (string, error) {
	folder, err := s.service.
		Files.Create(&drive.File{
			Name:     name,
			MimeType: folderMimeType,
		}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	if err := s.share(ctx, folder.Id); err != nil {
		return folder.Id, fmt.Errorf("share backups folder: %w", err)
	}

	return folder.Id, nil
}

func (s *DriveBackupService) share(ctx context.Context, fileID string) error {
	if s.shareWith == "" {
		return nil
	}

	permission, err := s.service.Permissions.
		Create(fileID, &drive.Permission{
			EmailAddress: s.shareWith,
			Type:         "user",
			Role:         "reader",
		}).
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	log.Debugf("permission %s created for %s", permission.Id, fileID)
	return nil
}
