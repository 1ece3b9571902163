package source

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestFormatSalaryRange(t *testing.T) {
	cases := []struct {
		min, max float64
		want     string
	}{
		{40000, 50000, "£40000 - £50000"},
		{40000, 0, "£40000"},
		{0, 50000, "£50000"},
		{40000, 40000, "£40000"},
		{0, 0, ""},
	}

	for _, tc := range cases {
		if got := formatSalaryRange(tc.min, tc.max); got != tc.want {
			t.Fatalf("formatSalaryRange(%v, %v) = %q, want %q", tc.min, tc.max, got, tc.want)
		}
	}
}

func TestAdzunaFetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("app_id") != "id" || r.URL.Query().Get("app_key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"count": 1, "results": [
			{
				"id": "4001",
				"title": "Sustainability Consultant",
				"description": "TCFD reporting.",
				"company": {"display_name": "Acme Consulting"},
				"location": {"display_name": "London, UK"},
				"category": {"label": "Consultancy Jobs"},
				"salary_min": 40000,
				"salary_max": 50000,
				"redirect_url": "https://adzuna.example/4001",
				"created": "2026-08-20T10:00:00Z",
				"contract_time": "full_time"
			}
		]}`))
	}))
	defer srv.Close()

	f := NewAdzuna(AdzunaConfig{
		AppID: "id", AppKey: "key",
		What: "sustainability consultant", Where: "london",
	}, zap.NewNop()).WithBaseURL(srv.URL)

	postings, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotPath != "/gb/search/1" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.Source != "adzuna" || p.SourceID != "4001" {
		t.Fatalf("unexpected identity: %s/%s", p.Source, p.SourceID)
	}
	if p.Company != "Acme Consulting" || p.Location != "London, UK" {
		t.Fatalf("nested fields not decoded: %+v", p)
	}
	if p.SalaryText != "£40000 - £50000" {
		t.Fatalf("salary text = %q", p.SalaryText)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "Consultancy Jobs" {
		t.Fatalf("category not carried as a tag: %v", p.Tags)
	}
	if p.PostedAt.IsZero() {
		t.Fatal("created date not parsed")
	}
}

func TestAdzunaFetchRequiresCredentials(t *testing.T) {
	f := NewAdzuna(AdzunaConfig{}, zap.NewNop())
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error without credentials")
	}
}

func TestAdzunaFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewAdzuna(AdzunaConfig{AppID: "id", AppKey: "key"}, zap.NewNop()).WithBaseURL(srv.URL)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error on a non-200 response")
	}
}

func TestReedFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"totalResults": 1, "results": [
			{
				"jobId": 9001,
				"employerName": "Green Futures",
				"jobTitle": "ESG Analyst",
				"locationName": "Manchester",
				"jobDescription": "CSRD readiness work.",
				"minimumSalary": 35000,
				"maximumSalary": 45000,
				"jobUrl": "https://reed.example/9001",
				"date": "20/08/2026",
				"fullTime": true
			}
		]}`))
	}))
	defer srv.Close()

	f := NewReed(ReedConfig{APIKey: "secret", Keywords: "sustainability"}, zap.NewNop()).WithBaseURL(srv.URL)

	postings, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("secret:"))
	if gotAuth != wantAuth {
		t.Fatalf("authorization = %q, want %q", gotAuth, wantAuth)
	}

	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.Source != "reed" || p.SourceID != "9001" {
		t.Fatalf("unexpected identity: %s/%s", p.Source, p.SourceID)
	}
	if p.JobType != "full_time" {
		t.Fatalf("job type = %q", p.JobType)
	}
	if p.SalaryText != "£35000 - £45000" {
		t.Fatalf("salary text = %q", p.SalaryText)
	}
	if p.PostedAt.Day() != 20 || p.PostedAt.Month() != 8 {
		t.Fatalf("date not parsed: %v", p.PostedAt)
	}
}

func TestReedFetchRequiresAPIKey(t *testing.T) {
	f := NewReed(ReedConfig{}, zap.NewNop())
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error without an api key")
	}
}
