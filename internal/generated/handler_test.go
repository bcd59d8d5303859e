package generated

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/documents"
)

func newTestRouter(t *testing.T) (*gin.Engine, *MemoryRepo, *documents.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	docRepo := documents.NewMemoryRepo()
	handler := NewHandler(&Service{Repo: repo, DocRepo: docRepo})

	router := gin.New()
	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
	})
	handler.RegisterRoutes(api)
	return router, repo, docRepo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if len(rec.Body.Bytes()) > 0 && rec.Body.Bytes()[0] == '{' {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func TestCreateAndGetContent(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec, created := doJSON(t, router, http.MethodPost, "/api/generated", map[string]any{
		"kind":    KindCoverLetter,
		"title":   "Backend role at Acme",
		"content": "Dear hiring manager,",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected generated id, got %v", created)
	}

	rec, got := doJSON(t, router, http.MethodGet, "/api/generated/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got["kind"] != KindCoverLetter || got["content"] != "Dear hiring manager," {
		t.Fatalf("unexpected content: %v", got)
	}
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/generated", map[string]any{
		"kind":    "poem",
		"content": "Roses are red",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRejectsForeignDocument(t *testing.T) {
	router, _, docRepo := newTestRouter(t)

	doc := documents.Document{
		ID:        "doc-other",
		UserID:    "user-2",
		FileName:  "cv.pdf",
		CreatedAt: time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	rec, _ := doJSON(t, router, http.MethodPost, "/api/generated", map[string]any{
		"kind":       KindTailoredCV,
		"documentId": "doc-other",
		"content":    "tailored text",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTouchesAccessTime(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	content := Content{
		ID:        "gen-1",
		UserID:    "user-1",
		Kind:      KindCoverLetter,
		Content:   "body",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := repo.Create(context.Background(), content); err != nil {
		t.Fatalf("seed content: %v", err)
	}

	rec, _ := doJSON(t, router, http.MethodGet, "/api/generated/gen-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	stored, err := repo.GetByID(context.Background(), "user-1", "gen-1")
	if err != nil {
		t.Fatalf("reload content: %v", err)
	}
	if stored.LastAccessedAt == nil {
		t.Fatal("expected lastAccessedAt to be set after read")
	}
}

func TestDeleteHidesContent(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	content := Content{
		ID:        "gen-2",
		UserID:    "user-1",
		Kind:      KindTailoredCV,
		Content:   "body",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), content); err != nil {
		t.Fatalf("seed content: %v", err)
	}

	rec, _ := doJSON(t, router, http.MethodDelete, "/api/generated/gen-2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/generated/gen-2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestListNewestFirst(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"gen-a", "gen-b", "gen-c"} {
		content := Content{
			ID:        id,
			UserID:    "user-1",
			Kind:      KindCoverLetter,
			Content:   "body",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(context.Background(), content); err != nil {
			t.Fatalf("seed content: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/generated?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var items []ContentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "gen-c" || items[1].ID != "gen-b" {
		t.Fatalf("unexpected list order: %+v", items)
	}
}
