//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/2beens/elite30/internal/progress"
	"github.com/2beens/elite30/internal/tracker"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path string, body any) (*http.Response, []byte) {
	t := s.T()

	var reqBody io.Reader = http.NoBody
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, respBytes
}

func (s *IntegrationTestSuite) storedDocument(ctx context.Context) string {
	var value string
	err := s.DB.QueryRow(ctx, `SELECT value FROM progress_slot WHERE slot = $1`, "progress").Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return ""
	}
	require.NoError(s.T(), err)
	return value
}

func (s *IntegrationTestSuite) TestProgressFlow() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	resp, _ := s.doRequest(ctx, http.MethodPost, "/progress/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, s.storedDocument(ctx))

	resp, body := s.doRequest(ctx, http.MethodGet, "/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var overview tracker.Overview
	require.NoError(t, json.Unmarshal(body, &overview))
	assert.Equal(t, 1, overview.CurrentDay)
	assert.Equal(t, "2025-12-29", overview.StartDate)
	assert.Equal(t, 140, overview.ProteinTarget)

	startDate := "2026-02-02"
	weight := 82.6
	resp, body = s.doRequest(ctx, http.MethodPut, "/progress/settings", tracker.SettingsUpdate{
		StartDate: &startDate,
		Weight:    &weight,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &overview))
	assert.Equal(t, 165, overview.ProteinTarget)

	note := gofakeit.Sentence(8)
	resp, body = s.doRequest(ctx, http.MethodPost, "/progress/day/1/complete", tracker.Completion{
		Note:        note,
		Protein:     170,
		Supplements: []string{"creatine"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var result tracker.CompletionResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Advanced)
	assert.True(t, result.ProteinTargetMet)
	assert.Equal(t, 2, result.Overview.CurrentDay)
	assert.Equal(t, "2026-02-02", result.Record.Date)

	// the row holds the whole document as one json string
	stored, err := progress.Decode(s.storedDocument(ctx))
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentDay)
	assert.Equal(t, note, stored.History["1"].Note)
	assert.Equal(t, []string{"creatine"}, stored.History["1"].Supplements)

	resp, body = s.doRequest(ctx, http.MethodGet, "/progress/today", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var plan tracker.DayPlan
	require.NoError(t, json.Unmarshal(body, &plan))
	assert.Equal(t, 2, plan.Day)
	assert.Equal(t, "2026-02-03", plan.Date)
	assert.True(t, plan.IsCurrent)
	assert.Nil(t, plan.Record)

	resp, body = s.doRequest(ctx, http.MethodGet, "/progress/calendar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var calendar []tracker.CalendarRow
	require.NoError(t, json.Unmarshal(body, &calendar))
	require.Len(t, calendar, 30)
	assert.True(t, calendar[0].Completed)
	assert.False(t, calendar[1].Completed)
	assert.Equal(t, "2026-03-03", calendar[29].Date)

	// completing a non-current day records it without advancing
	resp, body = s.doRequest(ctx, http.MethodPost, "/progress/day/5/complete", tracker.Completion{Protein: 100})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Advanced)
	assert.False(t, result.ProteinTargetMet)
	assert.Equal(t, 2, result.Overview.CurrentDay)
	assert.Equal(t, 2, result.Overview.CompletedDays)

	resp, _ = s.doRequest(ctx, http.MethodPost, "/progress/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.doRequest(ctx, http.MethodGet, "/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &overview))
	assert.Equal(t, 1, overview.CurrentDay)
	assert.Equal(t, 0, overview.CompletedDays)
}

func (s *IntegrationTestSuite) TestProgressBadRequests() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	for _, day := range []string{"0", "31", "abc"} {
		resp, _ := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/progress/day/%s", day), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, day)
	}

	resp, _ := s.doRequest(ctx, http.MethodPost, "/progress/day/1/complete", tracker.Completion{Protein: 301})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	weight := -1.0
	resp, _ = s.doRequest(ctx, http.MethodPut, "/progress/settings", tracker.SettingsUpdate{Weight: &weight})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestProgressCorruptedSlot() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	_, err := s.DB.Exec(ctx, `
		INSERT INTO progress_slot (slot, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		"progress", "{not json",
	)
	require.NoError(t, err)

	resp, body := s.doRequest(ctx, http.MethodGet, "/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var overview tracker.Overview
	require.NoError(t, json.Unmarshal(body, &overview))
	assert.Equal(t, 1, overview.CurrentDay)
	assert.Equal(t, 70.0, overview.Weight)
}

func (s *IntegrationTestSuite) TestWriteRateLimitHeader() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	resp, _ := s.doRequest(ctx, http.MethodPost, "/progress/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	require.NoError(t, err)

	resp, _ = s.doRequest(ctx, http.MethodPost, "/progress/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	require.NoError(t, err)

	assert.Less(t, second, first)
	assert.Less(t, first, testWritesPerMin)

	// reads are not limited
	resp, _ = s.doRequest(ctx, http.MethodGet, "/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-RateLimit-Remaining"))
}
