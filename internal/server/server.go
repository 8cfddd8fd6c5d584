package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mifile/internal/cache"
	"mifile/internal/config"
	DB "mifile/internal/db"
	"mifile/pkg/logger"
)

type Server struct {
	router  *gin.Engine
	db      *DB.DB
	cache   *cache.LRUCache[*SearchResponse]
	group   singleflight.Group
	metrics *Metrics
	log     *zap.SugaredLogger
}

// New creates a new server instance
func New(db *DB.DB, conf config.ServerConfig) *Server {
	s := &Server{
		db:      db,
		router:  gin.New(),
		cache:   cache.NewLRUCache[*SearchResponse](conf.CacheSize),
		metrics: NewMetrics(),
		log:     logger.Named("server"),
	}
	s.router.Use(gin.Recovery(), s.metrics.middleware())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHealthCheck())
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router.GET("/v1/collections/:name", s.handleGetCollection())
	s.router.DELETE("/v1/collections/:name", s.handleDeleteCollection())
	s.router.POST("/v1/collections/:name/buildindex", s.handleBuildIndex())
	s.router.POST("/v1/collections", s.handleCreateCollection())
	s.router.GET("/v1/collections", s.handleListCollections())

	s.router.POST("/v1/collections/:name/documents", s.handleUpsertDocument())
	s.router.GET("/v1/collections/:name/documents/:id", s.handleGetDocument())
	s.router.POST("/v1/collections/:name/documents/batchupsert", s.handleBatchUpsertDocuments())
	s.router.POST("/v1/collections/:name/documents/contains", s.handleContainsVector())
	s.router.POST("/v1/collections/:name/vectors/search", s.handleSearchVectors())
}

// Handler exposes the routes, for embedding in another http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Infow("server listening", "addr", addr)
	return s.router.Run(addr)
}
