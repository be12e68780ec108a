package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bildin8/postergram-juice-sub000/internal/consumption"
	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type fakeConsumption struct {
	rows   []consumption.UsageRow
	ranges [][2]time.Time
	err    error
}

func (f *fakeConsumption) AggregateRange(_ context.Context, dateFrom, dateTo time.Time) ([]consumption.UsageRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.ranges = append(f.ranges, [2]time.Time{dateFrom, dateTo})
	return f.rows, nil
}

func (f *fakeConsumption) RecordRange(_ context.Context, _, _ time.Time) (*consumption.RecordResult, error) {
	return &consumption.RecordResult{}, nil
}

type fakePar struct {
	suggestions []par.Suggestion
	velocity    []par.VelocityRow
	lastSuggest par.SuggestParams
}

func (f *fakePar) Suggest(_ context.Context, params par.SuggestParams) ([]par.Suggestion, error) {
	f.lastSuggest = params
	return f.suggestions, nil
}

func (f *fakePar) Velocity(_ context.Context, _ par.VelocityParams) ([]par.VelocityRow, error) {
	return f.velocity, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestUsageReportRequiresDateRange(t *testing.T) {
	handler := UsageReport(&fakeConsumption{}, testLogger())

	tests := []struct {
		name  string
		query string
	}{
		{"missing both", ""},
		{"missing dateTo", "?dateFrom=2026-03-14"},
		{"malformed date", "?dateFrom=03/14/2026&dateTo=2026-03-14"},
		{"inverted range", "?dateFrom=2026-03-15&dateTo=2026-03-14"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/usage"+tc.query, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestUsageReportPassesInclusiveRange(t *testing.T) {
	svc := &fakeConsumption{}
	handler := UsageReport(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/usage?dateFrom=2026-03-14&dateTo=2026-03-14", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(svc.ranges) != 1 {
		t.Fatalf("aggregate calls = %d, want 1", len(svc.ranges))
	}
	from, to := svc.ranges[0][0], svc.ranges[0][1]
	if !from.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %s", from)
	}
	// single-day range covers the whole day
	if !to.After(from.Add(23 * time.Hour)) {
		t.Fatalf("to = %s, want end of day", to)
	}

	var envelope struct {
		Data struct {
			Usage []consumption.UsageRow `json:"usage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestParReportForwardsOverrides(t *testing.T) {
	svc := &fakePar{}
	handler := ParReport(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/par?windowDays=14&leadDays=3&safetyPercent=10", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := par.SuggestParams{WindowDays: 14, LeadDays: 3, SafetyPercent: 10}
	if svc.lastSuggest != want {
		t.Fatalf("params = %+v, want %+v", svc.lastSuggest, want)
	}
}

func TestParReportRejectsOutOfRangeWindow(t *testing.T) {
	handler := ParReport(&fakePar{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/par?windowDays=365", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
