package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"SecuroHub/pkg/cache"
	"SecuroHub/pkg/response"

	"github.com/gin-gonic/gin"
)

type IdemStore interface {
	Set(key string, ttl time.Duration) bool // return true if set, false if exists
	Delete(key string)
}

// CacheIdemStore keeps idempotency keys in the shared cache backend.
type CacheIdemStore struct {
	Cache  cache.Cache
	Prefix string
}

func (s *CacheIdemStore) Set(key string, ttl time.Duration) bool {
	ok, err := s.Cache.SetNX(context.Background(), s.Prefix+key, 1, ttl)
	if err != nil {
		// an unavailable backend must not block submissions
		return true
	}
	return ok
}

func (s *CacheIdemStore) Delete(key string) {
	_ = s.Cache.Delete(context.Background(), s.Prefix+key)
}

type IdempotencyConfig struct {
	HeaderName string        // Idempotency-Key header name
	TTL        time.Duration // window in which a repeated request is rejected
	Store      IdemStore
	// Scope prefixes the key, typically with the caller's identity.
	Scope func(c *gin.Context) string
}

// IdempotencyMiddleware rejects a request whose Idempotency-Key header (or,
// without one, the hash of its body) was already seen within TTL. Keys of
// requests that fail are released so a corrected retry goes through.
func IdempotencyMiddleware(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "Idempotency-Key"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Store == nil {
		cfg.Store = &CacheIdemStore{Cache: cache.NewGoCache(cache.LocalConfig{DefaultExpiration: cfg.TTL}), Prefix: "idem:"}
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(cfg.HeaderName))
		if key == "" {
			b, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(b))
			h := sha256.Sum256(append([]byte(c.Request.Method+" "+c.FullPath()+"\n"), b...))
			key = hex.EncodeToString(h[:])
		}
		if cfg.Scope != nil {
			key = cfg.Scope(c) + ":" + key
		}
		if !cfg.Store.Set(key, cfg.TTL) {
			c.AbortWithStatusJSON(http.StatusConflict, response.Body{Code: http.StatusConflict, Msg: "duplicate request"})
			return
		}
		c.Next()
		if c.Writer.Status() >= http.StatusBadRequest {
			cfg.Store.Delete(key)
		}
	}
}
