package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vaarrunii/VidVault/config"
	"github.com/vaarrunii/VidVault/internal/handle"
	"github.com/vaarrunii/VidVault/internal/session"
	"github.com/vaarrunii/VidVault/internal/stats"
	"github.com/vaarrunii/VidVault/internal/store"
)

type HttpServer struct {
	engine *gin.Engine
	config *config.Config
}

type handlers struct {
	db       store.Store
	videos   *handle.Manager
	media    *handle.Registry
	sessions *session.Store
	log      zerolog.Logger
}

func New(config *config.Config, database store.Store, videos *handle.Manager, media *handle.Registry, sessions *session.Store, logger zerolog.Logger) (*HttpServer, error) {
	server := &HttpServer{
		config: config,
	}
	if err := server.Init(database, videos, media, sessions, logger); err != nil {
		return nil, err
	}

	return server, nil
}

func (s *HttpServer) Init(database store.Store, videos *handle.Manager, media *handle.Registry, sessions *session.Store, logger zerolog.Logger) error {
	if !s.config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := &handlers{
		db:       database,
		videos:   videos,
		media:    media,
		sessions: sessions,
		log:      logger,
	}

	if s.config.AllowedOrigins != nil && s.config.AllowedMethods != nil {
		allowAllOrigins := len(s.config.AllowedOrigins) == 1 && s.config.AllowedOrigins[0] == "*"
		allowedOrigins := s.config.AllowedOrigins
		if allowAllOrigins {
			allowedOrigins = nil
		}

		router.Use(cors.New(cors.Config{
			AllowAllOrigins: allowAllOrigins,
			AllowOrigins:    allowedOrigins,
			AllowMethods:    s.config.AllowedMethods,
			AllowHeaders:    s.config.AllowedHeaders,
		}))
	}

	router.GET("/healthcheck", handler.healthCheck(time.Now().UTC()))

	if s.config.Options.EnableStats {
		stat := stats.NewStatistic()

		router.Use(func(c *gin.Context) {
			startTime, recorder := stat.StartRecording()
			c.Next()
			recorder.Record(c.Writer.Status(), c.Writer.Size())
			stat.EndRecording(startTime, recorder)
		})

		router.GET("/sys/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, stat.GatherData())
		})
	}

	if s.config.Options.EnableHealth {
		router.GET("/sys/info", handler.sysStats())
	}

	if s.config.Options.EnablePrometheus {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("api")
	{
		api.GET("/videos", handler.videosGet())
		api.POST("/videos", handler.videoPost(s.config.MaxUploadBytes))
		api.PUT("/videos/:id", handler.videoPut(s.config.MaxUploadBytes))
		api.DELETE("/videos/:id", handler.videoDelete())
		api.GET("/categories", handler.categoriesGet())
		api.GET("/session", handler.sessionGet())
		api.PUT("/session", handler.sessionPut())
		api.DELETE("/session", handler.sessionDelete())
	}

	router.GET("/media/:token", handler.mediaGet())

	s.engine = router

	return nil
}

func (s *HttpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *HttpServer) Run() error {
	err := s.engine.Run(fmt.Sprintf(":%s", strconv.Itoa(s.config.Port)))
	if err != nil {
		return err
	}
	return nil
}
