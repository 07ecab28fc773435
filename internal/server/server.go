package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	"github.com/kickwatch/alerts-service/internal/config"
	"github.com/kickwatch/alerts-service/internal/observability"
	obsmiddleware "github.com/kickwatch/alerts-service/internal/observability/logger"
	obsmetrics "github.com/kickwatch/alerts-service/internal/observability/metrics"
	"github.com/kickwatch/alerts-service/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	alertSvc  alertdomain.Service
	scheduler *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	AlertSvc  alertdomain.Service
	Scheduler *scheduler.Scheduler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		alertSvc:  p.AlertSvc,
		scheduler: p.Scheduler,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	alerts := api.Group("/alerts")
	alerts.POST("", s.CreateAlert)
	alerts.GET("", s.ListAlerts)
	alerts.GET("/search", s.ListAlerts)
	alerts.GET("/:productId", s.GetAlert)
	alerts.PUT("/:productId", s.UpdateAlert)
	alerts.PATCH("/:productId", s.UpdateAlert)
	alerts.POST("/:productId/reset", s.ResetAlertStatus)
	alerts.DELETE("/:productId", s.DeleteAlert)

	api.GET("/alerts-scheduler/run", s.RunScheduler)
}
