package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nisal-dev/portfolio-backend/internal/cache"
)

// Actions that change what the public site should show. Everything else is
// acknowledged and dropped.
var processedActions = map[string]bool{
	"push":       true,
	"created":    true,
	"deleted":    true,
	"publicized": true,
	"privatized": true,
	"edited":     true,
}

// Handler receives GitHub repository webhooks and turns them into cache
// invalidations. The actual data refresh happens on the next read or sync.
type Handler struct {
	secret []byte
	owner  string
	cache  *cache.Store
	dedup  *Deduper
}

func NewHandler(secret, owner string, cacheStore *cache.Store, dedup *Deduper) *Handler {
	return &Handler{
		secret: []byte(secret),
		owner:  owner,
		cache:  cacheStore,
		dedup:  dedup,
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/webhooks/github", h.handle)
}

type payload struct {
	Action     string `json:"action"`
	Repository struct {
		Name    string `json:"name"`
		Private bool   `json:"private"`
		Owner   struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

func (h *Handler) handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Hub-Signature-256")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	// GitHub retries deliveries; the delivery ID makes retries harmless.
	if id := c.GetHeader("X-GitHub-Delivery"); id != "" && h.dedup.Seen(c.Request.Context(), id) {
		c.JSON(http.StatusOK, gin.H{"message": "duplicate delivery ignored"})
		return
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	action := p.Action
	if c.GetHeader("X-GitHub-Event") == "push" {
		action = "push"
	}

	if !h.shouldProcess(action, p) {
		c.JSON(http.StatusOK, gin.H{
			"message":    "event ignored",
			"repository": p.Repository.Name,
			"action":     action,
		})
		return
	}

	h.cache.InvalidateNamespace("projects")
	if action == "push" || action == "edited" {
		// Content changed, so the per-repo language breakdown is stale too.
		h.cache.Invalidate("github:languages:" + p.Repository.Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "cache invalidated",
		"repository": p.Repository.Name,
		"action":     action,
	})
}

func (h *Handler) shouldProcess(action string, p payload) bool {
	if !processedActions[action] {
		return false
	}
	if p.Repository.Private {
		return false
	}
	return strings.EqualFold(p.Repository.Owner.Login, h.owner)
}

func (h *Handler) verifySignature(body []byte, header string) bool {
	if len(h.secret) == 0 || header == "" {
		return false
	}

	hexSig := strings.TrimPrefix(header, "sha256=")
	if hexSig == header {
		return false
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}
