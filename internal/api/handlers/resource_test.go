package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/registrar/internal/config"
	"github.com/nebari-dev/registrar/internal/db"
	"github.com/nebari-dev/registrar/internal/events"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/nebari-dev/registrar/internal/service"
	"github.com/nebari-dev/registrar/internal/store"
	"github.com/nebari-dev/registrar/internal/web"
	"gorm.io/gorm"
)

// setupTestDB creates a migrated file-backed SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(database) })
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

// setupRouter creates a Gin engine with the resource routes of kind registered.
func setupRouter(t *testing.T, kind models.Kind) (*gin.Engine, *gorm.DB, *events.MemoryBroker) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := setupTestDB(t)
	broker := events.NewMemoryBroker(10)
	t.Cleanup(func() { broker.Close() })
	svc := service.New(database, kind, broker, slog.Default())
	h := NewResourceHandler(svc, broker)

	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/"+kind.Singular+"/ping", h.Ping)
	r.GET("/"+kind.Singular+"/events", h.Events)
	r.POST("/"+kind.Plural, h.Create)
	r.GET("/"+kind.Plural, h.List)
	r.GET("/"+kind.Plural+"/:id", h.Get)
	r.GET("/", h.Index)
	r.POST("/", h.Submit)
	return r, database, broker
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) MessageResponse {
	t.Helper()
	var resp MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func countRows(t *testing.T, database *gorm.DB, kind models.Kind) int64 {
	t.Helper()
	n, err := store.New(database, kind).Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestPing(t *testing.T) {
	for _, kind := range models.Kinds() {
		t.Run(kind.Plural, func(t *testing.T) {
			r, database, _ := setupRouter(t, kind)
			// Ping must not depend on the database
			_ = db.Close(database)

			w := doJSON(r, http.MethodGet, "/"+kind.Singular+"/ping", "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			resp := decodeMessage(t, w)
			if resp.Status != "success" || resp.Message != "pong!" {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestCreate_Success(t *testing.T) {
	r, database, _ := setupRouter(t, models.Components)

	w := doJSON(r, http.MethodPost, "/components", `{"name":"aws","description":"Amazon Web Services"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeMessage(t, w)
	if resp.Status != "success" || resp.Message != "aws was added!" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if n := countRows(t, database, models.Components); n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestCreate_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no body", ""},
		{"empty object", "{}"},
		{"missing name", `{"description":"Information System Security Officer"}`},
		{"missing description", `{"name":"ISSO"}`},
		{"blank name", `{"name":"   ","description":"x"}`},
		{"malformed json", `{"name":`},
		{"wrong type", `{"name":5,"description":"x"}`},
		{"name too long", `{"name":"` + strings.Repeat("n", models.MaxNameLength+1) + `","description":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, database, _ := setupRouter(t, models.Roles)

			w := doJSON(r, http.MethodPost, "/roles", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			resp := decodeMessage(t, w)
			if resp.Status != "fail" || resp.Message != "Invalid payload." {
				t.Errorf("unexpected response: %+v", resp)
			}
			if n := countRows(t, database, models.Roles); n != 0 {
				t.Errorf("expected no rows, got %d", n)
			}
		})
	}
}

func TestCreate_RequiresJSONContentType(t *testing.T) {
	body := `{"name":"ISSO","description":"Information System Security Officer"}`
	contentTypes := []string{"", "text/plain", "application/x-www-form-urlencoded"}

	for _, ct := range contentTypes {
		t.Run("content-type="+ct, func(t *testing.T) {
			r, database, _ := setupRouter(t, models.Roles)

			req := httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(body))
			if ct != "" {
				req.Header.Set("Content-Type", ct)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if resp := decodeMessage(t, w); resp.Message != "Invalid payload." {
				t.Errorf("unexpected response: %+v", resp)
			}
			if n := countRows(t, database, models.Roles); n != 0 {
				t.Errorf("expected no rows, got %d", n)
			}
		})
	}

	r, _, _ := setupRouter(t, models.Roles)
	req := httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("json with charset: expected 201, got %d", w.Code)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	r, database, _ := setupRouter(t, models.Roles)
	body := `{"name":"ISSO","description":"Information System Security Officer"}`

	if w := doJSON(r, http.MethodPost, "/roles", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", w.Code)
	}
	w := doJSON(r, http.MethodPost, "/roles", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decodeMessage(t, w)
	if resp.Message != "Sorry. That role already exists." {
		t.Errorf("unexpected message: %q", resp.Message)
	}
	if n := countRows(t, database, models.Roles); n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestGet(t *testing.T) {
	r, database, _ := setupRouter(t, models.Components)
	doJSON(r, http.MethodPost, "/components", `{"name":"aws","description":"Amazon Web Services"}`)

	var rec models.Record
	if err := database.Table("components").Where("name = ?", "aws").First(&rec).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}

	w := doJSON(r, http.MethodGet, "/components/"+strconv.FormatUint(uint64(rec.ID), 10), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, _ := resp["data"].(map[string]any)
	if resp["status"] != "success" || data["name"] != "aws" || data["description"] != "Amazon Web Services" {
		t.Errorf("unexpected response: %v", resp)
	}
	if _, ok := data["created_date"]; ok {
		t.Error("created_date should not be serialized")
	}
	if len(data) != 3 {
		t.Errorf("expected exactly id, name, description; got %v", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ids := []string{"999", "abc", "-1", "1.5", "+5", "1_0", "99999999999999999999999", "events"}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			r, _, _ := setupRouter(t, models.Components)

			w := doJSON(r, http.MethodGet, "/components/"+id, "")
			if w.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", w.Code)
			}
			resp := decodeMessage(t, w)
			if resp.Status != "fail" || resp.Message != "Component does not exist" {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestList(t *testing.T) {
	r, _, _ := setupRouter(t, models.Roles)

	w := doJSON(r, http.MethodGet, "/roles", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var empty ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &empty); err != nil {
		t.Fatalf("decode: %v", err)
	}
	roles, ok := empty.Data["roles"]
	if !ok || roles == nil || len(roles) != 0 {
		t.Errorf("expected an empty roles array, got %s", w.Body.String())
	}

	for _, name := range []string{"ISSO", "ISSM", "AO"} {
		doJSON(r, http.MethodPost, "/roles", `{"name":"`+name+`","description":"d"}`)
	}

	w = doJSON(r, http.MethodGet, "/roles", "")
	var resp ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := resp.Data["roles"]
	if len(got) != 3 || got[0].Name != "ISSO" || got[1].Name != "ISSM" || got[2].Name != "AO" {
		t.Errorf("list not in creation order: %+v", got)
	}
}

func TestIndex(t *testing.T) {
	r, _, _ := setupRouter(t, models.Components)

	w := doJSON(r, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No components!") {
		t.Errorf("empty page missing placeholder: %s", w.Body.String())
	}

	doJSON(r, http.MethodPost, "/components", `{"name":"aws","description":"Amazon Web Services"}`)
	w = doJSON(r, http.MethodGet, "/", "")
	body := w.Body.String()
	if !strings.Contains(body, "Amazon Web Services") || strings.Contains(body, "No components!") {
		t.Errorf("page should list the record: %s", body)
	}
}

func postForm(r http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmit_Success(t *testing.T) {
	r, database, _ := setupRouter(t, models.Roles)

	w := postForm(r, url.Values{"name": {"ISSO"}, "description": {"Information System Security Officer"}})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
	if n := countRows(t, database, models.Roles); n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestSubmit_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		message string
		rows    int64
	}{
		{"missing fields", url.Values{}, "Invalid payload.", 0},
		{"missing description", url.Values{"name": {"ISSO"}}, "Invalid payload.", 0},
		{"duplicate", url.Values{"name": {"AO"}, "description": {"Authorizing Official"}}, "Sorry. That role already exists.", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, database, _ := setupRouter(t, models.Roles)
			doJSON(r, http.MethodPost, "/roles", `{"name":"AO","description":"Authorizing Official"}`)
			before := countRows(t, database, models.Roles)

			w := postForm(r, tt.values)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.message) {
				t.Errorf("page missing %q: %s", tt.message, w.Body.String())
			}
			if n := countRows(t, database, models.Roles); n != before {
				t.Errorf("row count changed from %d to %d", before, n)
			}
		})
	}
}

func TestEvents_StreamsCreatedRecords(t *testing.T) {
	r, _, broker := setupRouter(t, models.Components)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/component/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	// The first comment line confirms the subscription is registered
	if line, err := reader.ReadString('\n'); err != nil || !strings.HasPrefix(line, ":") {
		t.Fatalf("expected subscription comment, got %q (%v)", line, err)
	}
	if !broker.HasSubscribers("components") {
		t.Fatal("expected an active subscriber")
	}

	create, err := http.Post(srv.URL+"/components", "application/json",
		strings.NewReader(`{"name":"aws","description":"Amazon Web Services"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	create.Body.Close()

	var eventLine, dataLine string
	for eventLine == "" || dataLine == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		switch {
		case strings.HasPrefix(line, "event: "):
			eventLine = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	if eventLine != events.ActionCreated {
		t.Errorf("event = %q, want created", eventLine)
	}
	var e events.Event
	if err := json.Unmarshal([]byte(dataLine), &e); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if e.Kind != "components" || e.Record.Name != "aws" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestEvents_NoBroker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	database := setupTestDB(t)
	h := NewResourceHandler(service.New(database, models.Roles, nil, nil), nil)

	r := gin.New()
	r.GET("/role/events", h.Events)

	w := doJSON(r, http.MethodGet, "/role/events", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
