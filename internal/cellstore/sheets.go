package cellstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/2beens/elite30/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// MaxSheetCellChars is the google sheets limit for the content of one cell.
const MaxSheetCellChars = 50000

var (
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
	ErrValueTooLarge       = errors.New("value does not fit in one sheet cell")
)

// Sheets keeps the value in a single cell of a google spreadsheet, e.g. Sheet1!A1.
type Sheets struct {
	service       *sheets.Service
	spreadsheetID string
	cellRange     string
}

func NewSheets(service *sheets.Service, spreadsheetID, cellRange string) *Sheets {
	return &Sheets{
		service:       service,
		spreadsheetID: spreadsheetID,
		cellRange:     cellRange,
	}
}

// NewGoogleServices creates sheets and drive clients authorized with the
// service account credentials. Requests go through the given http client,
// so they can be traced.
func NewGoogleServices(
	ctx context.Context,
	credentialsJson []byte,
	httpClient *http.Client,
) (*sheets.Service, *drive.Service, error) {
	jwtConfig, err := google.JWTConfigFromJSON(
		credentialsJson,
		sheets.SpreadsheetsScope,
		drive.DriveScope,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("parse google credentials: %w", err)
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	authClient := jwtConfig.Client(ctx)

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(authClient))
	if err != nil {
		return nil, nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveService, err := drive.NewService(ctx, option.WithHTTPClient(authClient))
	if err != nil {
		return nil, nil, fmt.Errorf("create drive service: %w", err)
	}

	return sheetsService, driveService, nil
}

// FindSpreadsheetID looks up a spreadsheet by its name. If there are more
// spreadsheets with the same name, the first one is taken.
// DriveQueryValue escapes a value placed inside a single-quoted drive query string.
func DriveQueryValue(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), "'", `\'`)
}

func FindSpreadsheetID(ctx context.Context, driveService *drive.Service, name string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.sheets.findSpreadsheet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	query := fmt.Sprintf(
		"mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false and name = '%s'",
		DriveQueryValue(name),
	)
	fileList, err := driveService.
		Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list spreadsheets: %w", err)
	}

	switch len(fileList.Files) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrSpreadsheetNotFound, name)
	case 1:
	default:
		log.Warnf("found %d spreadsheets named [%s], will take the first one: %s", len(fileList.Files), name, fileList.Files[0].Id)
	}

	return fileList.Files[0].Id, nil
}

func (s *Sheets) Read(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.sheets.read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	resp, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, s.cellRange).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("get cell %s: %w", s.cellRange, err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}

	switch v := resp.Values[0][0].(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (s *Sheets) Write(ctx context.Context, value string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.sheets.write")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if n := utf8.RuneCountInString(value); n > MaxSheetCellChars {
		return fmt.Errorf("%w: %d characters", ErrValueTooLarge, n)
	}
	span.SetAttributes(attribute.Int("size", len(value)))

	valueRange := &sheets.ValueRange{
		Range:  s.cellRange,
		Values: [][]interface{}{{value}},
	}
	if _, err := s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, s.cellRange, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("update cell %s: %w", s.cellRange, err)
	}

	return nil
}

func (s *Sheets) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.sheets.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.service.Spreadsheets.Values.
		Clear(s.spreadsheetID, s.cellRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("clear cell %s: %w", s.cellRange, err)
	}

	return nil
}
