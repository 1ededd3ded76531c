// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, idempotency and rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-pickset-backend/docs" // swagger spec registration
	"github.com/tbourn/go-pickset-backend/internal/blob"
	"github.com/tbourn/go-pickset-backend/internal/config"
	"github.com/tbourn/go-pickset-backend/internal/http/handlers"
	"github.com/tbourn/go-pickset-backend/internal/http/middleware"
	"github.com/tbourn/go-pickset-backend/internal/services"
)

// jsonBodyLimit caps every non-upload request body.
const jsonBodyLimit = 1 << 20

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs with masked headers
//  4. Recovery: capture panics after logger
//  5. Metrics
//  6. Idempotency validator (before rate limiter to allow bypass on replay)
//  7. Rate limiter (per user/IP, bypass on replay); uploads have a second,
//     size-weighted limiter
//  8. CORS and security headers
//  9. gzip for responses (never /metrics)
//
// Body limits are per route group: uploads get cfg.Ingest.MaxUploadBytes,
// everything else jsonBodyLimit.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, blobs blob.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	replay := &services.ReplayStore{DB: db, TTL: cfg.IdempotencyTTL}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, replay.Exists))

	r.Use(middleware.NewRateLimiter(middleware.RateLimitOptions{
		Scope: "api",
		RPS:   cfg.RateRPS,
		Burst: cfg.RateBurst,
	}).Handler())

	useCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:           cfg.Security.EnableHSTS,
		HSTSMaxAge:           cfg.Security.HSTSMaxAge,
		NoStore:              true,
		CacheablePaths:       []string{"/swagger/"},
		EnablePolicy:         true,
		CrossOriginIsolation: true,
	}))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/blob store
	locks := services.NewLockRegistry()
	ingest := services.NewIngestService(db, blobs, locks)
	ingest.MaxBatchFiles = cfg.Ingest.MaxBatchFiles
	ingest.MaxReportedErrors = cfg.Ingest.MaxReportedErrors
	queues := &services.QueueService{DB: db, Locks: locks, Blobs: blobs}
	selections := &services.SelectionService{DB: db}
	progress := &services.ProgressService{DB: db}

	h := handlers.New(queues, ingest, selections, progress, replay)

	api := groupWithPrefix(r, cfg.APIBasePath)

	// Uploads additionally pay one token per started MiB of declared body.
	uploadLimiter := middleware.NewRateLimiter(middleware.RateLimitOptions{
		Scope: "upload",
		RPS:   cfg.RateRPS,
		Burst: cfg.RateBurst,
		Cost:  middleware.CostByContentLength(1 << 20),
	})
	uploads := api.Group("/queues/:id/images", uploadLimiter.Handler(), limitBody(cfg.Ingest.MaxUploadBytes))
	{
		uploads.POST("", h.UploadImage)
		uploads.POST("/batch", h.UploadBatch)
	}

	rest := api.Group("", limitBody(jsonBodyLimit))
	{
		// Queues
		rest.POST("/queues", h.CreateQueue)
		rest.GET("/queues", h.ListQueues)
		rest.GET("/queues/:id", h.GetQueue)
		rest.DELETE("/queues/:id", h.DeleteQueue)
		rest.GET("/queues/:id/groups", h.ListGroups)
		rest.PATCH("/queues/:id/status", h.SetQueueStatus)
		rest.GET("/queues/:id/imports", h.ListImports)
		rest.POST("/queues/:id/recount", h.RecountQueue)
		rest.DELETE("/queues/:id/images/:imageId", h.RemoveImage)

		// Review
		rest.GET("/queues/:id/next", h.NextGroup)
		rest.POST("/queues/:id/selections", h.RecordSelection)

		// Progress
		rest.GET("/queues/:id/progress/me", h.MyProgress)
		rest.GET("/queues/:id/progress", h.QueueProgress)
		rest.GET("/progress", h.AllProgress)
	}
}

// useCORS installs the CORS posture: allow-all when no origins are
// configured, otherwise an allowlist.
func useCORS(r *gin.Engine, origins []string) {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Idempotency-Replayed"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		base.AllowAllOrigins = true
		r.Use(cors.New(base))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	base.AllowOrigins = origins
	r.Use(cors.New(base))
}

// limitBody caps the request body at maxBytes; reads past the cap fail
// with *http.MaxBytesError.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
