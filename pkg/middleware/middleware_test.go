package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/i18n"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)
	rl := NewRateLimiter(RateLimiterConfig{Rate: "2-M", AddHeaders: true, SkipPaths: []string{"/health"}}, nil).WithObserver(obs)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
		if i == 0 {
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.deny.WithLabelValues("/ping")))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	rl.UpdateConfig(RateLimiterConfig{Rate: "2-M", WhitelistCIDRs: []string{"192.0.2.0/24"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIdempotency(t *testing.T) {
	r := gin.New()
	r.Use(IdempotencyMiddleware(IdempotencyConfig{TTL: time.Minute, Scope: func(c *gin.Context) string {
		return c.GetHeader("X-User")
	}}))
	created := 0
	r.POST("/alerts", func(c *gin.Context) {
		if strings.Contains(c.GetHeader("X-Fail"), "yes") {
			c.Status(http.StatusBadRequest)
			return
		}
		created++
		c.Status(http.StatusCreated)
	})

	post := func(body, key, user string, fail ...bool) int {
		req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(body))
		if len(fail) > 0 && fail[0] {
			req.Header.Set("X-Fail", "yes")
		}
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post(`{"description":"a"}`, "", "ann"))
	assert.Equal(t, http.StatusConflict, post(`{"description":"a"}`, "", "ann"))
	assert.Equal(t, http.StatusCreated, post(`{"description":"a"}`, "", "ben"))
	assert.Equal(t, http.StatusCreated, post(`{"description":"b"}`, "k1", "ann"))
	assert.Equal(t, http.StatusConflict, post(`{"description":"c"}`, "k1", "ann"))

	// a failed request does not hold its key
	assert.Equal(t, http.StatusBadRequest, post(`{"description":"d"}`, "", "ann", true))
	assert.Equal(t, http.StatusBadRequest, post(`{"description":"d"}`, "", "ann", true))
	assert.Equal(t, http.StatusCreated, post(`{"description":"d"}`, "", "ann"))
	assert.Equal(t, 4, created)
}

func TestLanguageMiddleware(t *testing.T) {
	support, err := i18n.NewI18nSupport("en")
	require.NoError(t, err)

	r := gin.New()
	r.Use(LanguageMiddleware(support))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(constant.LangField)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?lang=es", nil))
	assert.Equal(t, "es", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "es", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?lang=de", nil))
	assert.Equal(t, "en", w.Body.String())
}

func TestAuditorClientInfo(t *testing.T) {
	a, err := NewAuditor("")
	require.NoError(t, err)
	defer a.Close()

	var info ClientInfo
	r := gin.New()
	r.Use(a.Middleware())
	r.GET("/", func(c *gin.Context) {
		info = a.ClientInfo(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.1", info.IP)
	assert.Equal(t, "mobile", info.Device)
	assert.Contains(t, info.Browser, "Safari")
	assert.Empty(t, info.City)
}
