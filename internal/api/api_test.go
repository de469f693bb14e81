package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/fragdeck/internal/config"
	"github.com/dgallion1/fragdeck/internal/viewer"
)

const sampleDeck = `---
title: Demo
---
# Intro

Hello

> shown later

# Second

plain
`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Config{
		Port:            "8090",
		MaxUploadBytes:  1 << 16,
		SessionTTL:      time.Hour,
		CleanupInterval: time.Minute,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(viewer.NewStore(cfg.SessionTTL), nil, nil, log, cfg)
}

func uploadRequest(t *testing.T, filename, body, title string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(body))
	if title != "" {
		mw.WriteField("title", title)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/decks", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(s, uploadRequest(t, "demo.md", sampleDeck, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		DeckID  string `json:"deck_id"`
		Title   string `json:"title"`
		Pages   int    `json:"pages"`
		ViewURL string `json:"view_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.Title != "Demo" || resp.Pages != 2 || resp.ViewURL != "/decks/"+resp.DeckID {
		t.Fatalf("unexpected upload response %+v", resp)
	}
	return resp.DeckID
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) viewer.Snapshot {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap viewer.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.APIKey = "secret" })
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadAndNavigate(t *testing.T) {
	s := newTestServer(t, nil)
	id := upload(t, s)

	snap := decodeSnapshot(t, do(s, httptest.NewRequest(http.MethodGet, "/api/decks/"+id, nil)))
	if snap.Page != 1 || len(snap.Pages) != 2 || snap.Pages[0].Fragments != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	snap = decodeSnapshot(t, do(s, httptest.NewRequest(http.MethodPost, "/api/decks/"+id+"/advance", nil)))
	if snap.Pages[0].Revealed != 1 || snap.Page != 1 {
		t.Errorf("expected fragment revealed on page 1, got %+v", snap)
	}
	snap = decodeSnapshot(t, do(s, httptest.NewRequest(http.MethodPost, "/api/decks/"+id+"/advance", nil)))
	if snap.Page != 2 || !snap.Done {
		t.Errorf("expected to reach the last page, got %+v", snap)
	}
	snap = decodeSnapshot(t, do(s, httptest.NewRequest(http.MethodPost, "/api/decks/"+id+"/back", nil)))
	if snap.Page != 1 {
		t.Errorf("expected page 1 after back, got %d", snap.Page)
	}
	snap = decodeSnapshot(t, do(s, httptest.NewRequest(http.MethodPut, "/api/decks/"+id+"/page/2", nil)))
	if snap.Page != 2 {
		t.Errorf("expected page 2 after goto, got %d", snap.Page)
	}

	if rec := do(s, httptest.NewRequest(http.MethodPut, "/api/decks/"+id+"/page/9", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for page out of range, got %d", rec.Code)
	}
	if rec := do(s, httptest.NewRequest(http.MethodPut, "/api/decks/"+id+"/page/two", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric page, got %d", rec.Code)
	}
}

func TestUploadTitleOverride(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, uploadRequest(t, "notes.txt", "Only\nline", "Custom"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"title":"Custom"`) {
		t.Errorf("expected overridden title, got %s", rec.Body.String())
	}
}

func TestUploadErrors(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.MaxUploadBytes = 64 })

	tests := []struct {
		name     string
		filename string
		body     string
		want     int
	}{
		{"unsupported type", "image.png", "x", http.StatusBadRequest},
		{"malformed json", "deck.json", "{", http.StatusBadRequest},
		{"too large", "big.txt", strings.Repeat("a", 100), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		rec := do(s, uploadRequest(t, tt.filename, tt.body, ""))
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d: %s", tt.name, tt.want, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
			t.Errorf("%s: expected json error body", tt.name)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/decks", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "text/plain")
	if rec := do(s, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-multipart body, got %d", rec.Code)
	}
}

func TestListAndDelete(t *testing.T) {
	s := newTestServer(t, nil)
	id := upload(t, s)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/decks", nil))
	var list struct {
		Decks []viewer.Snapshot `json:"decks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Decks) != 1 || list.Decks[0].ID != id {
		t.Fatalf("expected one listed deck, got %+v", list.Decks)
	}

	if rec := do(s, httptest.NewRequest(http.MethodDelete, "/api/decks/"+id, nil)); rec.Code != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", rec.Code)
	}
	if rec := do(s, httptest.NewRequest(http.MethodDelete, "/api/decks/"+id, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
	if rec := do(s, httptest.NewRequest(http.MethodPost, "/api/decks/"+id+"/advance", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for deleted deck, got %d", rec.Code)
	}
}

func TestReuploadReplacesSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := upload(t, s)
	do(s, httptest.NewRequest(http.MethodPost, "/api/decks/"+id+"/advance", nil))

	if again := upload(t, s); again != id {
		t.Fatalf("expected same deck id for identical upload, got %s vs %s", again, id)
	}
	snap := decodeSnapshot(t, do(s, httptest.NewRequest(http.MethodGet, "/api/decks/"+id, nil)))
	if snap.Pages[0].Revealed != 0 {
		t.Errorf("expected fresh reveal state after reload, got %d", snap.Pages[0].Revealed)
	}
}

func TestView(t *testing.T) {
	s := newTestServer(t, nil)
	id := upload(t, s)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/decks/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>Demo</title>") {
		t.Errorf("expected deck title in document, got %s", body)
	}
	if !strings.Contains(body, "fragment fragdeck-hidden") {
		t.Errorf("expected hidden fragment before advancing, got %s", body)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/decks/"+id+"?reveal=all", nil))
	if strings.Contains(rec.Body.String(), "fragment fragdeck-hidden") {
		t.Errorf("expected all fragments visible with reveal=all")
	}

	if rec := do(s, httptest.NewRequest(http.MethodGet, "/decks/missing", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing deck, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.APIKey = "secret" })

	if rec := do(s, httptest.NewRequest(http.MethodGet, "/api/decks", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/decks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if rec := do(s, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/decks", nil)
	req.Header.Set("Authorization", "Bearer secret")
	if rec := do(s, req); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid key, got %d", rec.Code)
	}

	if rec := do(s, httptest.NewRequest(http.MethodGet, "/api/decks?token=secret", nil)); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with query token, got %d", rec.Code)
	}
	if rec := do(s, httptest.NewRequest(http.MethodPost, "/api/decks/x/advance?token=secret", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected query token to be refused for POST, got %d", rec.Code)
	}
}

func TestBuildStats(t *testing.T) {
	s := newTestServer(t, nil)
	upload(t, s)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/stats/render", nil))
	var resp struct {
		Decks int `json:"decks"`
		Stats struct {
			Count    int            `json:"count"`
			ByFormat map[string]int `json:"by_format"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if resp.Decks != 1 || resp.Stats.Count != 1 || resp.Stats.ByFormat[".md"] != 1 {
		t.Errorf("unexpected stats %+v", resp)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"deck.md", "deck.md"},
		{"../../etc/passwd", "passwd"},
		{`C:\slides\talk.md`, "C:_slides_talk.md"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
