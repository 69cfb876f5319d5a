package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/line-menu-bot/internal/api/http"
	"github.com/spec-kit/line-menu-bot/internal/api/http/handlers"
	"github.com/spec-kit/line-menu-bot/internal/auth"
	"github.com/spec-kit/line-menu-bot/internal/config"
	"github.com/spec-kit/line-menu-bot/internal/domain"
	"github.com/spec-kit/line-menu-bot/internal/events"
	"github.com/spec-kit/line-menu-bot/internal/observability"
	"github.com/spec-kit/line-menu-bot/internal/service"
	"github.com/spec-kit/line-menu-bot/internal/storage"
)

const channelSecret = "test-channel-secret"

type recordingRouter struct {
	mu     sync.Mutex
	events []domain.InboundEvent
	err    error
}

func (r *recordingRouter) Route(_ context.Context, event domain.InboundEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingRouter) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *recordingRouter) Register(domain.ContentKind, events.EventHandler) {}

func (r *recordingRouter) routed() []domain.InboundEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.InboundEvent(nil), r.events...)
}

type seenGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *seenGuard) MarkProcessed(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[id] {
		return false, nil
	}
	g.seen[id] = true
	return true, nil
}

func (g *seenGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, id)
	return nil
}

type staticAdmin struct{}

func (staticAdmin) Login(username, password string) (string, time.Time, error) {
	if username == "admin" && password == "pw" {
		return "token", time.Unix(1700000000, 0).UTC(), nil
	}
	return "", time.Time{}, auth.ErrInvalidCredentials
}

func (staticAdmin) Intents() []service.IntentRule { return service.DefaultRules() }

func (staticAdmin) Metrics() observability.Snapshot { return observability.NewMetrics().Snapshot() }

func (staticAdmin) RecentReplies(context.Context, int) ([]domain.ReplyLog, error) {
	return []domain.ReplyLog{{ID: "1", ReplyToken: "tok", MessageTypes: []string{"text"}, MessageCount: 1, Status: domain.ReplyStatusSent}}, nil
}

func newTestApp(router events.Router, guard *seenGuard) (*fiber.App, *auth.TokenManager) {
	return newTestAppWithConfig(config.AppConfig{Name: "line-menu-bot"}, router, guard)
}

func newTestAppWithConfig(appCfg config.AppConfig, router events.Router, guard *seenGuard) (*fiber.App, *auth.TokenManager) {
	tokens := auth.NewTokenManager("jwt-secret", 5)
	app := fiber.New(httptransport.FiberConfig(appCfg))
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), time.Second)

	var webhookGuard handlers.WebhookEventGuard
	if guard != nil {
		webhookGuard = guard
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("line-menu-bot", "test", nil),
		Webhook:        handlers.NewWebhookHandler(channelSecret, router, webhookGuard, zap.NewNop()),
		Admin:          handlers.NewAdminHandler(staticAdmin{}),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})
	return app, tokens
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func callback(t *testing.T, app *fiber.App, body []byte, signature string) *http.Response {
	t.Helper()
	return callbackWithHeaders(t, app, body, signature, nil)
}

func callbackWithHeaders(t *testing.T, app *fiber.App, body []byte, signature string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Line-Signature", signature)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

const textEventBody = `{"destination":"Ubot","events":[{"type":"message","mode":"active","timestamp":1700000000000,` +
	`"source":{"type":"user","userId":"U1"},"webhookEventId":"E1","deliveryContext":{"isRedelivery":false},` +
	`"replyToken":"tok","message":{"type":"text","id":"m1","quoteToken":"q","text":"M3"}}]}`

func TestWebhookRejectsBadSignature(t *testing.T) {
	t.Parallel()
	router := &recordingRouter{}
	app, _ := newTestApp(router, nil)

	resp := callback(t, app, []byte(textEventBody), "invalid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, router.routed())
}

func TestWebhookAcceptsEmptyEvents(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(&recordingRouter{}, nil)
	body := []byte(`{"destination":"Ubot","events":[]}`)

	resp := callback(t, app, body, sign(body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhookRoutesMessageEvents(t *testing.T) {
	t.Parallel()
	router := &recordingRouter{}
	app, _ := newTestApp(router, nil)
	body := []byte(textEventBody)

	resp := callback(t, app, body, sign(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	routed := router.routed()
	require.Len(t, routed, 1)
	assert.Equal(t, domain.ContentKindText, routed[0].Kind)
	assert.Equal(t, "tok", routed[0].ReplyToken)
	assert.Equal(t, "U1", routed[0].SourceUserID)
	require.NotNil(t, routed[0].Text)
	assert.Equal(t, "M3", routed[0].Text.Text)
}

func TestWebhookSkipsProcessedEvents(t *testing.T) {
	t.Parallel()
	router := &recordingRouter{}
	app, _ := newTestApp(router, &seenGuard{seen: map[string]bool{}})
	body := []byte(textEventBody)

	for i := 0; i < 2; i++ {
		resp := callback(t, app, body, sign(body))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Len(t, router.routed(), 1)
}

func TestWebhookRetriesRedeliveryAfterFailure(t *testing.T) {
	t.Parallel()
	router := &recordingRouter{err: errors.New("content download failed")}
	app, _ := newTestApp(router, &seenGuard{seen: map[string]bool{}})
	body := []byte(textEventBody)

	resp := callback(t, app, body, sign(body))
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	router.setErr(nil)
	resp = callback(t, app, body, sign(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, router.routed(), 2)

	resp = callback(t, app, body, sign(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, router.routed(), 2)
}

type baseURLRouter struct {
	store *storage.ContentStore
	uris  chan string
}

func (r *baseURLRouter) Route(ctx context.Context, _ domain.InboundEvent) error {
	r.uris <- r.store.Allocate(ctx, "jpg").URI
	return nil
}

func (r *baseURLRouter) Register(domain.ContentKind, events.EventHandler) {}

func TestWebhookContentURIFollowsForwardedScheme(t *testing.T) {
	t.Parallel()
	store, err := storage.NewContentStore(t.TempDir(), "", nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		proxies []string
		prefix  string
	}{
		{name: "any peer trusted", prefix: "https://example.com/downloaded/"},
		{name: "untrusted peer", proxies: []string{"10.9.9.9"}, prefix: "http://example.com/downloaded/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router := &baseURLRouter{store: store, uris: make(chan string, 1)}
			app, _ := newTestAppWithConfig(config.AppConfig{Name: "line-menu-bot", TrustedProxies: tt.proxies}, router, nil)
			body := []byte(textEventBody)

			resp := callbackWithHeaders(t, app, body, sign(body), map[string]string{
				"X-Forwarded-Proto": "https",
			})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.True(t, strings.HasPrefix(<-router.uris, tt.prefix))
		})
	}
}

func TestWebhookReportsHandlerFailure(t *testing.T) {
	t.Parallel()
	router := &recordingRouter{err: errors.New("reply failed")}
	app, _ := newTestApp(router, nil)
	body := []byte(textEventBody)

	resp := callback(t, app, body, sign(body))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAdminLoginAndProtectedRoutes(t *testing.T) {
	t.Parallel()
	app, tokens := newTestApp(&recordingRouter{}, nil)

	login := func(payload string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}
	assert.Equal(t, http.StatusOK, login(`{"username":"admin","password":"pw"}`).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, login(`{"username":"admin","password":"bad"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, login(`{"username":"admin"}`).StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/admin/intents", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, _, err := tokens.GenerateToken("admin")
	require.NoError(t, err)

	for _, path := range []string{"/admin/intents", "/admin/metrics", "/admin/replies?limit=10"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/intents", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Data []service.IntentRule `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NotEmpty(t, payload.Data)
	assert.Equal(t, "profile", payload.Data[0].Match)
}

func TestHealthLive(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(&recordingRouter{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
