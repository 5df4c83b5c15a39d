package api

import (
	"context"
	"net/http"
	"runtime"

	"github.com/pipeos/pipes/src/ingest"
	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/utils/config"
	. "github.com/pipeos/pipes/src/utils/logger"
	"github.com/pipeos/pipes/src/utils/monitoring"
	"github.com/pipeos/pipes/src/utils/task"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slices"
	"golang.org/x/time/rate"
)

// Rest API server, serves pipe containers, functions and tags
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	monitor      monitoring.Monitor
	repositories *store.Repositories
	deriver      *ingest.Deriver
	rollback     *ingest.Rollback
	runner       *ingest.Runner
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()

	self.httpServer = &http.Server{
		Addr:    self.Config.API.ListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) WithRepositories(v *store.Repositories) *Server {
	self.repositories = v
	return self
}

func (self *Server) WithDeriver(v *ingest.Deriver) *Server {
	self.deriver = v
	return self
}

func (self *Server) WithRollback(v *ingest.Rollback) *Server {
	self.rollback = v
	return self
}

func (self *Server) WithRunner(v *ingest.Runner) *Server {
	self.runner = v
	return self
}

// Setup registers middleware and routes, call it after all dependencies are set
func (self *Server) Setup() *Server {
	self.Router.Use(gin.Recovery(), self.cors(), self.rateLimit())

	v1 := self.Router.Group("v1")
	{
		v1.GET("health", self.monitor.OnGetHealth)
		v1.GET("state", self.monitor.OnGetState)
		v1.GET("metrics", self.metrics())
	}

	if self.Config.Profiler.Enabled {
		runtime.SetBlockProfileRate(self.Config.Profiler.BlockProfileRate)
		pprof.Register(self.Router)
	}

	self.registerContainers(self.Router.Group("pipecontainer"))
	self.registerFunctions(self.Router.Group("pipefunction"))
	self.registerTags(self.Router.Group("tag"))

	return self
}

func (self *Server) cors() gin.HandlerFunc {
	conf := cors.DefaultConfig()
	conf.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	if len(self.Config.API.CorsAllowOrigins) == 0 || slices.Contains(self.Config.API.CorsAllowOrigins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = self.Config.API.CorsAllowOrigins
	}
	return cors.New(conf)
}

func (self *Server) rateLimit() gin.HandlerFunc {
	if self.Config.API.RateLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Limit(self.Config.API.RateLimit), self.Config.API.RateBurst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			self.monitor.GetReport().Api.Errors.RateLimited.Inc()
			LOGE(c, nil, http.StatusTooManyRequests).Debug("Rate limited")
			return
		}
		c.Next()
	}
}

func (self *Server) metrics() gin.HandlerFunc {
	registry := prometheus.NewRegistry()
	registry.MustRegister(self.monitor.GetPrometheusCollector())
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

func (self *Server) run() (err error) {
	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}
