package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"oracleprobe.com/pkg/common"
	"oracleprobe.com/pkg/ratelimit"
)

func newEngine(store *ratelimit.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ReqId(), Recover(), RateLimit(store))
	r.GET("/ok", func(c *gin.Context) { common.Success(c, common.RequestID(c)) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) common.ApiResponse {
	t.Helper()
	var resp common.ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestReqId_PropagatesHeader(t *testing.T) {
	r := newEngine(nil)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(common.HeaderRequestID, "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rid-1", w.Header().Get(common.HeaderRequestID))
	assert.Equal(t, "rid-1", decode(t, w).Data)

	// 没带就生成一个
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Header().Get(common.HeaderRequestID))

	// 不合法的 id 不透传
	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(common.HeaderRequestID, "evil id with spaces")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "evil id with spaces", w.Header().Get(common.HeaderRequestID))
	assert.Equal(t, w.Header().Get(common.HeaderRequestID), decode(t, w).Data)
}

func TestRecover(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal error", *resp.Error)
}

func TestRateLimit(t *testing.T) {
	r := newEngine(ratelimit.NewStore(rate.Every(time.Hour), 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, decode(t, w).Success)

	// 按路由分桶：/panic 的桶还是满的，进得去（然后被 Recover 接住）
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
