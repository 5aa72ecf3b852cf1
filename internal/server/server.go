// Package server exposes the HTTP API: consumption readings, the indicator
// dashboard payload, the alert log, settings and the cost report.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	alertdomain "github.com/orwelltherazer/statelec/internal/alert/domain"
	"github.com/orwelltherazer/statelec/internal/config"
	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
	"github.com/orwelltherazer/statelec/internal/observability/logger"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

type Server struct {
	db           *gorm.DB
	cfg          config.Config
	log          *zap.Logger
	readings     readingdomain.Repository
	indicatorSvc indicatordomain.Service
	alerts       alertdomain.Repository
	settingsSvc  settingsdomain.Service
	limiter      *rateLimiter
}

type ServerParam struct {
	fx.In

	DB           *gorm.DB
	Cfg          config.Config
	Log          *zap.Logger
	Readings     readingdomain.Repository
	IndicatorSvc indicatordomain.Service
	Alerts       alertdomain.Repository
	SettingsSvc  settingsdomain.Service
}

func NewServer(p ServerParam) *Server {
	limit := p.Cfg.HTTP.RateLimit
	if limit <= 0 {
		limit = 120
	}
	window := p.Cfg.HTTP.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return &Server{
		db:           p.DB,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		readings:     p.Readings,
		indicatorSvc: p.IndicatorSvc,
		alerts:       p.Alerts,
		settingsSvc:  p.SettingsSvc,
		limiter:      newRateLimiter(limit, window),
	}
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	return engine
}

// RateLimit applies the per-client fixed-window limiter keyed by client IP.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(engine *gin.Engine, s *Server) {
	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api", s.RateLimit())
	{
		api.GET("/indicators", s.GetIndicators)

		api.GET("/consumption", s.QueryConsumption)
		api.POST("/consumption", s.CreateConsumption)
		api.GET("/consumption/latest", s.GetLatestConsumption)
		api.GET("/consumption/count", s.CountConsumption)
		api.GET("/consumption/paginated", s.ListConsumptionPage)

		api.GET("/alerts", s.ListAlerts)

		api.GET("/settings/:key", s.GetSetting)
		api.PUT("/settings/:key", s.PutSetting)

		api.GET("/cost/report", s.GetCostReport)
	}
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
