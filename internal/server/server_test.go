package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lapu-lapu-poc/server/internal/calllog"
	"github.com/lapu-lapu-poc/server/internal/catalog"
	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/fulfillment"
	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/lapu-lapu-poc/server/internal/observers"
	"github.com/lapu-lapu-poc/server/internal/ratelimit"
	"github.com/lapu-lapu-poc/server/internal/tools"
	"github.com/lapu-lapu-poc/server/internal/webhook"
	"github.com/lapu-lapu-poc/server/pkg/retell"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	mu        sync.Mutex
	createErr error
	listErr   error
	created   []string
}

func (f *fakePlatform) CreateWebCall(_ context.Context, agentID string, metadata map[string]any) (*retell.WebCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, agentID)
	return &retell.WebCall{CallID: "call_" + agentID, AccessToken: "tok", AgentID: agentID}, nil
}

func (f *fakePlatform) ListAgents(context.Context) ([]retell.Agent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []retell.Agent{{AgentID: "a1", AgentName: "Pharmacy", VoiceID: "v1"}}, nil
}

type testEnv struct {
	srv      *Server
	ledger   *fulfillment.Ledger
	calls    *calllog.Recorder
	platform *fakePlatform
	metrics  *observers.Metrics
}

func newTestEnv(t *testing.T, limits model.RateLimitConfig, staticDir string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := catalog.NewStoreFromProducts([]model.Product{{
		ProductName:    "Paracetamol 500mg",
		GenericName:    "Paracetamol",
		SizeVariant:    "500mg tablet",
		RegularPrice:   decimal.NewFromInt(10),
		PWDSeniorPrice: decimal.NewFromInt(8),
		Category:       "Pain Relief",
	}})
	ledger := fulfillment.NewLedger()
	calls := calllog.NewRecorder()
	metrics := observers.NewMetrics()
	platform := &fakePlatform{}

	srv := New(Deps{
		Catalog:    store,
		Calls:      calls,
		Ledger:     ledger,
		Dispatcher: tools.NewDispatcher(store, ledger, calls, tools.WithCallbacks(observers.NewToolCallbacks(metrics)), tools.WithMetrics(metrics)),
		Webhooks:   webhook.NewValidator(calls, metrics),
		Limiter:    ratelimit.NewMemory(limits),
		Platform:   platform,
		Metrics:    metrics,
		StaticDir:  staticDir,
	})
	return &testEnv{srv: srv, ledger: ledger, calls: calls, platform: platform, metrics: metrics}
}

func defaultLimits() model.RateLimitConfig {
	return model.RateLimitConfig{PerIdentityHourly: 5, DailyCalls: 100}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, r)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")
	w, body := env.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
	assert.Equal(t, Phase, body["phase"])
	assert.Equal(t, 1.0, body["products"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestWebhook_AlwaysAcknowledges(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")

	w, body := env.do(t, http.MethodPost, "/webhooks/retell",
		`{"event":"call_started","call":{"call_id":"c1","agent_id":"a1","call_status":"ongoing"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "call_started", body["received"])

	w, body = env.do(t, http.MethodPost, "/webhooks/retell", `{"event":"nope","call":{"call_id":"c2"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Event received but validation failed", body["note"])

	w, body = env.do(t, http.MethodGet, "/webhooks/retell/logs?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["total"])
	assert.Equal(t, 1.0, body["showing"])
	logs := body["logs"].([]any)
	require.Len(t, logs, 1)
	assert.Equal(t, "unknown", logs[0].(map[string]any)["event"])
	assert.Equal(t, "c2", logs[0].(map[string]any)["call_id"])
}

func TestTools_ParacetamolScenario(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")

	w, body := env.do(t, http.MethodPost, "/webhooks/retell/tools",
		`{"name":"lookup_product","args":{"query":"paracetamol"},"call":{"call_id":"c1"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	result := body["result"].(string)
	assert.Contains(t, result, "10")
	assert.Contains(t, result, "8")

	w, body = env.do(t, http.MethodPost, "/webhooks/retell/tools",
		`{"tool_name":"create_order","arguments":{"product_name":"Paracetamol 500mg","quantity":3,"is_pwd_senior":true,"customer_phone":"0917"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	result = body["result"].(string)
	assert.Contains(t, result, "ORD-")
	assert.Contains(t, result, "24")

	w, body = env.do(t, http.MethodGet, "/webhooks/retell/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["total"])
	order := body["orders"].([]any)[0].(map[string]any)
	assert.Equal(t, "24", order["total_price"])
	assert.Equal(t, "pending", order["status"])
}

func TestTools_UnknownAndMalformed(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")

	w, body := env.do(t, http.MethodPost, "/webhooks/retell/tools", `{"name":"foo","args":{}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tools.UnknownToolMessage, body["result"])

	w, body = env.do(t, http.MethodPost, "/webhooks/retell/tools", `{{{`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tools.FallbackMessage, body["result"])

	_, body = env.do(t, http.MethodGet, "/webhooks/retell/orders", "")
	assert.Equal(t, 0.0, body["total"])
	_, body = env.do(t, http.MethodGet, "/webhooks/retell/complaints", "")
	assert.Equal(t, 0.0, body["total"])
}

func TestTools_Definitions(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")
	w, body := env.do(t, http.MethodGet, "/webhooks/retell/tools", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["tools"], 4)
}

func TestWebCall(t *testing.T) {
	t.Run("missing agent id", func(t *testing.T) {
		env := newTestEnv(t, defaultLimits(), "")
		w, body := env.do(t, http.MethodPost, "/api/web-call", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "agent_id is required", body["error"])
	})

	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t, defaultLimits(), "")
		w, body := env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"agent_1"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "call_agent_1", body["call_id"])
		assert.Equal(t, "tok", body["access_token"])
	})

	t.Run("per identity limit", func(t *testing.T) {
		env := newTestEnv(t, model.RateLimitConfig{PerIdentityHourly: 2, DailyCalls: 100}, "")
		for i := 0; i < 2; i++ {
			w, _ := env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`, "X-Forwarded-For", "1.1.1.1")
			require.Equal(t, http.StatusOK, w.Code)
		}
		w, body := env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`, "X-Forwarded-For", "1.1.1.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "identity", body["reason"])

		w, _ = env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`, "X-Forwarded-For", "2.2.2.2")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("daily limit", func(t *testing.T) {
		env := newTestEnv(t, model.RateLimitConfig{PerIdentityHourly: 5, DailyCalls: 1}, "")
		w, _ := env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`, "X-Forwarded-For", "1.1.1.1")
		require.Equal(t, http.StatusOK, w.Code)

		w, body := env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`, "X-Forwarded-For", "3.3.3.3")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "daily", body["reason"])
		assert.Contains(t, body["error"], "tomorrow")
	})

	t.Run("upstream failure releases daily budget", func(t *testing.T) {
		env := newTestEnv(t, model.RateLimitConfig{PerIdentityHourly: 5, DailyCalls: 1}, "")
		env.platform.createErr = errx.Upstream(errors.New("boom"))

		w, body := env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to create web call", body["error"])

		_, status := env.do(t, http.MethodGet, "/api/web-call/status", "")
		assert.Equal(t, 0.0, status["daily_used"])

		env.platform.createErr = nil
		w, _ = env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("upstream timeout", func(t *testing.T) {
		env := newTestEnv(t, defaultLimits(), "")
		env.platform.createErr = errx.Timeout(errors.New("deadline"))
		w, _ := env.do(t, http.MethodPost, "/api/web-call", `{"agent_id":"a"}`)
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})
}

func TestListAgents(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")
	w, body := env.do(t, http.MethodGet, "/api/web-call/agents", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["agents"], 1)

	env.platform.listErr = errx.Upstream(retell.ErrMissingAPIKey)
	w, body = env.do(t, http.MethodGet, "/api/web-call/agents", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to list agents", body["error"])
	assert.Contains(t, body["message"], "RETELL_API_KEY")
}

func TestRateLimitStatus(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")
	w, body := env.do(t, http.MethodGet, "/api/web-call/status", "", "X-Forwarded-For", "4.4.4.4")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100.0, body["daily_limit"])
	assert.Equal(t, 100.0, body["daily_remaining"])
	assert.Equal(t, 5.0, body["per_identity_hourly_limit"])
	assert.Equal(t, "4.4.4.4", body["identity"])
}

func TestNotFoundAndStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>voice test</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("startCall()"), 0o644))

	env := newTestEnv(t, defaultLimits(), dir)

	w, _ := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "voice test")

	w, _ = env.do(t, http.MethodGet, "/assets/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "startCall()", w.Body.String())

	w, body := env.do(t, http.MethodGet, "/assets/", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "directories without an index are not listed")
	assert.Equal(t, "Not found", body["error"])

	w, body = env.do(t, http.MethodGet, "/nope.js", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", body["error"])

	w, body = env.do(t, http.MethodGet, "/../../etc/passwd", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", body["error"])

	w, body = env.do(t, http.MethodDelete, "/webhooks/retell/orders", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, defaultLimits(), "")
	env.do(t, http.MethodPost, "/webhooks/retell/tools", `{"name":"lookup_product","args":{"query":"paracetamol"}}`)

	w, _ := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `lapulapu_tool_calls_total{outcome="ok",tool="lookup_product"} 1`)
}

func TestRecoveryReturnsGeneric500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
