package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprom "github.com/zsais/go-gin-prometheus"
	"oracleprobe.com/internal/oracle/ws"
	"oracleprobe.com/pkg/middleware"
	"oracleprobe.com/pkg/ratelimit"
)

func NewRouter(h *Handler, wsSrv *ws.Server, store *ratelimit.Store) *gin.Engine {
	r := gin.New()
	// 监控
	p := ginprom.NewPrometheus("mockoracle")
	p.Use(r)
	r.Use(
		middleware.ReqId(),
		cors.Default(),
		middleware.Recover(),
	)

	r.GET("/ws", gin.WrapF(wsSrv.ServeWS))
	r.GET("/health", h.Health)

	api := r.Group("/api", middleware.RateLimit(store))
	api.POST("/ai/oracle", h.Oracle)
	return r
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}
