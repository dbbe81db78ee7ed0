// Package google backs the lesson and settings stores with a Google
// Sheets spreadsheet: one sheet holds lesson rows, another holds the
// settings document as a single JSON cell.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"lezioni/internal/core"
	"lezioni/internal/store"
)

type Options struct {
	SpreadsheetID   string
	LessonSheet     string
	SettingsSheet   string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	lessonSheet   string
	settingsSheet string

	// Numeric sheet id, resolved lazily for row deletion.
	lessonSheetID int64
	sheetIDKnown  bool
}

// Ensure interface conformance
var (
	_ store.LessonWriter  = (*Client)(nil)
	_ store.LessonLister  = (*Client)(nil)
	_ store.SettingsStore = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account key.
// When neither inline JSON nor a file is configured, the standard
// GOOGLE_APPLICATION_CREDENTIALS location is tried.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	lessonSheet := strings.TrimSpace(opts.LessonSheet)
	if lessonSheet == "" {
		lessonSheet = "Lezioni"
	}
	settingsSheet := strings.TrimSpace(opts.SettingsSheet)
	if settingsSheet == "" {
		settingsSheet = "Impostazioni"
	}

	credentialsJSON, err := resolveCredentials(opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		lessonSheet:   lessonSheet,
		settingsSheet: settingsSheet,
	}, nil
}

func resolveCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials")
}

// SaveLesson upserts the lesson row keyed by its ID column.
func (c *Client) SaveLesson(ctx context.Context, l core.Lesson) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, l.ID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{lessonRow(l)}}
	if row > 0 {
		rng := fmt.Sprintf("%s!A%d:H%d", c.lessonSheet, row, row)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d in sheet %s: %w", row, c.lessonSheet, err)
		}
		return nil
	}
	rng := fmt.Sprintf("%s!A:H", c.lessonSheet)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.lessonSheet, err)
	}
	return nil
}

// DeleteLesson removes the lesson's row entirely so later reads do not
// trip over a blank line.
func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return store.ErrLessonNotFound
	}
	sheetID, err := c.resolveLessonSheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", row, c.lessonSheet, err)
	}
	return nil
}

// ListLessons scans the lesson sheet. Parsing is best-effort: headers and
// malformed rows are skipped rather than failing the whole read.
func (c *Client) ListLessons(ctx context.Context) ([]core.Lesson, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:H", c.lessonSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]core.Lesson, 0, len(resp.Values))
	for _, row := range resp.Values {
		if l, ok := parseLessonRow(toStrings(row)); ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// LoadSettings reads the settings document cell. An empty cell yields the
// default document so a fresh spreadsheet works out of the box.
func (c *Client) LoadSettings(ctx context.Context) (core.Settings, error) {
	if c.svc == nil {
		return core.Settings{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2", c.settingsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return core.Settings{}, fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return core.DefaultSettings(), nil
	}
	raw := strings.TrimSpace(fmt.Sprint(resp.Values[0][0]))
	if raw == "" {
		return core.DefaultSettings(), nil
	}
	s, err := store.DecodeSettings([]byte(raw))
	if err != nil {
		return core.Settings{}, fmt.Errorf("settings cell %s: %w", rng, err)
	}
	return s, nil
}

// SaveSettings replaces the settings document cell as a whole.
func (c *Client) SaveSettings(ctx context.Context, s core.Settings) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	data, err := store.EncodeSettings(s)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A1:A2", c.settingsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{{"settings_json"}, {string(data)}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	return nil
}

// findRow returns the 1-based row whose first column equals id, 0 when
// absent.
func (c *Client) findRow(ctx context.Context, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.lessonSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) resolveLessonSheetID(ctx context.Context) (int64, error) {
	if c.sheetIDKnown {
		return c.lessonSheetID, nil
	}
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.lessonSheet {
			c.lessonSheetID = sh.Properties.SheetId
			c.sheetIDKnown = true
			return c.lessonSheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.lessonSheet)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
