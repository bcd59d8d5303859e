package retention

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const testCronSecret = "cron-secret-123"

func newCronRouter(store Store, enabled bool) (*gin.Engine, *Scheduler) {
	gin.SetMode(gin.TestMode)

	svc := NewDeletionService(store, DefaultDeletionConfig())
	sched := NewScheduler(svc, NewMemorySettingsRepo(), NewMemoryLockRepo(), nil, SchedulerConfig{})
	handler := &CronHandler{
		Scheduler:  sched,
		Secret:     testCronSecret,
		Enabled:    enabled,
		DailyCron:  "0 2 * * *",
		NotifyCron: "0 9 * * *",
		WeeklyCron: "0 3 * * 0",
	}

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))
	return router, sched
}

func doCron(t *testing.T, router *gin.Engine, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/cron/data-retention", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var payload map[string]any
	if len(resp.Body.Bytes()) > 0 {
		if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode response %q: %v", resp.Body.String(), err)
		}
	}
	return resp, payload
}

func TestCronRejectsBadSecret(t *testing.T) {
	store := NewMemoryStore()
	seedEligible(store, DataTypeSessions, 2)
	router, _ := newCronRouter(store, true)

	for _, token := range []string{"", "wrong-secret"} {
		resp, payload := doCron(t, router, token, `{"jobType":"daily"}`)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, resp.Code)
		}
		if payload["success"] != false {
			t.Fatalf("token %q: expected failure envelope, got %v", token, payload)
		}
	}

	if got := len(store.Snapshot(DataTypeSessions)); got != 2 {
		t.Fatalf("unauthorized calls must not mutate, %d sessions remain", got)
	}
}

func TestCronRunsDailyJob(t *testing.T) {
	store := NewMemoryStore()
	seedEligible(store, DataTypeSessions, 2)
	router, _ := newCronRouter(store, true)

	resp, payload := doCron(t, router, testCronSecret, `{"jobType":"daily"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if payload["success"] != true {
		t.Fatalf("expected success, got %v", payload)
	}
	if _, ok := payload["timestamp"].(string); !ok {
		t.Fatalf("missing timestamp: %v", payload)
	}
	result := payload["result"].(map[string]any)
	if result["jobType"] != JobDaily {
		t.Fatalf("unexpected job type: %v", result)
	}
	if got := len(store.Snapshot(DataTypeSessions)); got != 0 {
		t.Fatalf("expected sessions removed, %d remain", got)
	}
}

func TestCronRejectsUnknownJobType(t *testing.T) {
	router, _ := newCronRouter(NewMemoryStore(), true)

	resp, payload := doCron(t, router, testCronSecret, `{"jobType":"hourly"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	msg, _ := payload["error"].(string)
	if !strings.Contains(msg, "daily") {
		t.Fatalf("error should list valid job types, got %q", msg)
	}
}

func TestCronStatusListsJobsAndExpressions(t *testing.T) {
	router, _ := newCronRouter(NewMemoryStore(), true)

	req := httptest.NewRequest(http.MethodGet, "/api/cron/data-retention", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	jobs, ok := payload["availableJobs"].([]any)
	if !ok || len(jobs) != 3 {
		t.Fatalf("expected 3 available jobs, got %v", payload["availableJobs"])
	}
	exprs, ok := payload["cronExpressions"].(map[string]any)
	if !ok || exprs["daily"] != "0 2 * * *" {
		t.Fatalf("unexpected cron expressions: %v", payload["cronExpressions"])
	}
}

func TestCronGatedByFeatureFlag(t *testing.T) {
	router, _ := newCronRouter(NewMemoryStore(), false)

	resp, payload := doCron(t, router, testCronSecret, `{"jobType":"daily"}`)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if payload["enabled"] != false {
		t.Fatalf("expected enabled:false, got %v", payload)
	}
}
