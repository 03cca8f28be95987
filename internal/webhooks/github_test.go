package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisal-dev/portfolio-backend/internal/cache"
)

const testSecret = "webhook-secret"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newTestRouter(t *testing.T, store *cache.Store, dedup *Deduper) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := NewHandler(testSecret, "nisal", store, dedup)
	h.Register(r.Group("/api/v1"))
	return r
}

func deliver(r *gin.Engine, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/github", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func repoEventBody(action string) []byte {
	return []byte(`{"action":"` + action + `","repository":{"name":"portfolio","private":false,"owner":{"login":"nisal"}}}`)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	store := cache.New()
	store.Set("projects:all", "cached", time.Hour)
	r := newTestRouter(t, store, NewDeduper(nil, 0))

	body := repoEventBody("edited")
	w := deliver(r, body, map[string]string{
		"X-GitHub-Event":      "repository",
		"X-Hub-Signature-256": sign("wrong-secret", body),
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, ok := store.Get("projects:all")
	assert.True(t, ok, "a rejected request must not invalidate anything")
}

func TestWebhook_RejectsMissingSignature(t *testing.T) {
	r := newTestRouter(t, cache.New(), NewDeduper(nil, 0))

	w := deliver(r, repoEventBody("edited"), map[string]string{
		"X-GitHub-Event": "repository",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_EditedInvalidatesProjectsAndLanguages(t *testing.T) {
	store := cache.New()
	store.Set("projects:all", 1, time.Hour)
	store.Set("projects:featured", 2, time.Hour)
	store.Set("github:languages:portfolio", 3, time.Hour)
	store.Set("github:languages:other", 4, time.Hour)
	r := newTestRouter(t, store, NewDeduper(nil, 0))

	body := repoEventBody("edited")
	w := deliver(r, body, map[string]string{
		"X-GitHub-Event":      "repository",
		"X-Hub-Signature-256": sign(testSecret, body),
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache invalidated"`)

	_, ok := store.Get("projects:all")
	assert.False(t, ok)
	_, ok = store.Get("projects:featured")
	assert.False(t, ok)
	_, ok = store.Get("github:languages:portfolio")
	assert.False(t, ok)
	_, ok = store.Get("github:languages:other")
	assert.True(t, ok, "other repos' language caches stay put")
}

func TestWebhook_PushEvent(t *testing.T) {
	store := cache.New()
	store.Set("projects:all", 1, time.Hour)
	store.Set("github:languages:portfolio", 2, time.Hour)
	r := newTestRouter(t, store, NewDeduper(nil, 0))

	// Push payloads carry no "action"; the event header decides.
	body := []byte(`{"repository":{"name":"portfolio","private":false,"owner":{"login":"nisal"}}}`)
	w := deliver(r, body, map[string]string{
		"X-GitHub-Event":      "push",
		"X-Hub-Signature-256": sign(testSecret, body),
	})

	require.Equal(t, http.StatusOK, w.Code)
	_, ok := store.Get("projects:all")
	assert.False(t, ok)
	_, ok = store.Get("github:languages:portfolio")
	assert.False(t, ok)
}

func TestWebhook_IgnoresUnknownActionAndForeignOwner(t *testing.T) {
	store := cache.New()
	store.Set("projects:all", 1, time.Hour)
	r := newTestRouter(t, store, NewDeduper(nil, 0))

	body := repoEventBody("starred")
	w := deliver(r, body, map[string]string{
		"X-GitHub-Event":      "repository",
		"X-Hub-Signature-256": sign(testSecret, body),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event ignored")

	body = []byte(`{"action":"edited","repository":{"name":"x","private":false,"owner":{"login":"someone-else"}}}`)
	w = deliver(r, body, map[string]string{
		"X-GitHub-Event":      "repository",
		"X-Hub-Signature-256": sign(testSecret, body),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event ignored")

	_, ok := store.Get("projects:all")
	assert.True(t, ok, "ignored events must not invalidate")
}

func TestWebhook_DeduplicatesDeliveries(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := cache.New()
	r := newTestRouter(t, store, NewDeduper(rdb, time.Hour))

	body := repoEventBody("edited")
	headers := map[string]string{
		"X-GitHub-Event":      "repository",
		"X-Hub-Signature-256": sign(testSecret, body),
		"X-GitHub-Delivery":   "delivery-1",
	}

	w := deliver(r, body, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cache invalidated")

	store.Set("projects:all", "repopulated", time.Hour)

	w = deliver(r, body, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate delivery ignored")
	_, ok := store.Get("projects:all")
	assert.True(t, ok, "a duplicate delivery must be a no-op")
}

func TestDeduper_NilRedisNeverSeen(t *testing.T) {
	d := NewDeduper(nil, 0)
	assert.False(t, d.Seen(context.Background(), "id"))
	assert.False(t, d.Seen(context.Background(), "id"))
}
