package route

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"newsletter-back/internal/config"
)

// recorder answers every route with the handler name in a header.
type recorder struct{}

func (recorder) reply(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Handler", name)
		c.Status(http.StatusOK)
	}
}

func (r recorder) Ping(c *gin.Context)             { r.reply("Ping")(c) }
func (r recorder) Health(c *gin.Context)           { r.reply("Health")(c) }
func (r recorder) CreateTopic(c *gin.Context)      { r.reply("CreateTopic")(c) }
func (r recorder) ListTopics(c *gin.Context)       { r.reply("ListTopics")(c) }
func (r recorder) GetTopic(c *gin.Context)         { r.reply("GetTopic")(c) }
func (r recorder) UpdateTopic(c *gin.Context)      { r.reply("UpdateTopic")(c) }
func (r recorder) DeleteTopic(c *gin.Context)      { r.reply("DeleteTopic")(c) }
func (r recorder) CreateSubscriber(c *gin.Context) { r.reply("CreateSubscriber")(c) }
func (r recorder) ListSubscribers(c *gin.Context)  { r.reply("ListSubscribers")(c) }
func (r recorder) GetSubscriber(c *gin.Context)    { r.reply("GetSubscriber")(c) }
func (r recorder) UpdateSubscriber(c *gin.Context) { r.reply("UpdateSubscriber")(c) }
func (r recorder) Subscribe(c *gin.Context)        { r.reply("Subscribe")(c) }
func (r recorder) Unsubscribe(c *gin.Context)      { r.reply("Unsubscribe")(c) }
func (r recorder) DeleteSubscriber(c *gin.Context) { r.reply("DeleteSubscriber")(c) }
func (r recorder) CreateContent(c *gin.Context)    { r.reply("CreateContent")(c) }
func (r recorder) ListContents(c *gin.Context)     { r.reply("ListContents")(c) }
func (r recorder) GetContentStats(c *gin.Context)  { r.reply("GetContentStats")(c) }
func (r recorder) GetContent(c *gin.Context)       { r.reply("GetContent")(c) }
func (r recorder) UpdateContent(c *gin.Context)    { r.reply("UpdateContent")(c) }
func (r recorder) DeleteContent(c *gin.Context)    { r.reply("DeleteContent")(c) }
func (r recorder) DispatchContent(c *gin.Context)  { r.reply("DispatchContent")(c) }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTPServer.BasePath = "/api"
	cfg.HTTPServer.Timeout.Request = time.Second
	cfg.Metrics = config.Metrics{Enabled: true, Path: "/metrics"}
	cfg.Redis.RateLimit = config.RateLimit{Requests: 2, Window: time.Minute}

	return cfg
}

func handlers() Handlers {
	r := recorder{}

	return Handlers{
		Health:     r,
		Topic:      r,
		Subscriber: r,
		Content:    r,
		Metrics:    promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
	}
}

func TestSetupRouter_Routes(t *testing.T) {
	router := SetupRouter(zap.NewNop(), testConfig(), nil, handlers())

	id := "7f1b2c1e-6a7b-4b8e-9a55-0d5c0f3f0b11"

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/health", "Health"},
		{http.MethodGet, "/api/health/ping", "Ping"},
		{http.MethodPost, "/api/topics", "CreateTopic"},
		{http.MethodGet, "/api/topics/" + id, "GetTopic"},
		{http.MethodPost, "/api/subscribers/" + id + "/subscribe", "Subscribe"},
		{http.MethodPost, "/api/subscribers/" + id + "/unsubscribe", "Unsubscribe"},
		{http.MethodGet, "/api/content/stats", "GetContentStats"},
		{http.MethodGet, "/api/content/" + id, "GetContent"},
		{http.MethodPost, "/api/content/" + id + "/dispatch", "DispatchContent"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

		assert.Equal(t, http.StatusOK, w.Code, tt.path)
		assert.Equal(t, tt.want, w.Header().Get("X-Handler"), tt.path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/topics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSetupRouter_RateLimitSkipsHealth(t *testing.T) {
	m := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := SetupRouter(zap.NewNop(), testConfig(), client, handlers())

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/topics", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
