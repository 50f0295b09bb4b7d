package handlers

import (
	"github.com/gin-gonic/gin"

	"mocktest-service/internal/metrics"
	"mocktest-service/internal/ratelimit"
	"mocktest-service/internal/service"
)

type Router struct {
	Catalog *CatalogHandler
	Attempt *AttemptHandler
	Health  *HealthHandler
	Limiter *ratelimit.Limiter
}

func NewRouter(registry *service.Registry, limiter *ratelimit.Limiter, serviceName, version string) *Router {
	return &Router{
		Catalog: NewCatalogHandler(),
		Attempt: NewAttemptHandler(registry),
		Health:  NewHealthHandler(registry, serviceName, version),
		Limiter: limiter,
	}
}

// Register mounts every route on r.
func (rt *Router) Register(r *gin.Engine) {
	r.GET("/health", rt.Health.Health)
	r.GET("/metrics", metrics.Handler())

	publicCatalog := r.Group("/public/mocktest/catalog")
	{
		publicCatalog.GET("/exams", rt.Catalog.ListExams)
		publicCatalog.GET("/subjects", rt.Catalog.ListSubjects)
	}

	h := rt.Attempt
	publicAttempt := r.Group("/public/mocktest/attempt")
	{
		publicAttempt.POST("", h.CreateAttempt)
		publicAttempt.GET("/:id", h.GetAttempt)
		publicAttempt.DELETE("/:id", h.DeleteAttempt)

		// === SELECTION ===
		publicAttempt.POST("/:id/exam", h.SelectExam)
		publicAttempt.POST("/:id/back", h.Back)
		publicAttempt.POST("/:id/subject", rt.Limiter.Middleware(), h.SelectSubject)

		// === TEST INTERACTION ===
		publicAttempt.POST("/:id/answer", h.SelectOption)
		publicAttempt.DELETE("/:id/answer", h.ClearAnswer)
		publicAttempt.POST("/:id/navigate", h.Navigate)
		publicAttempt.POST("/:id/next", h.Next)
		publicAttempt.POST("/:id/previous", h.Previous)
		publicAttempt.POST("/:id/bookmark", h.ToggleBookmark)

		// === SUBMISSION ===
		publicAttempt.POST("/:id/submit", h.Submit)
		publicAttempt.POST("/:id/confirm", h.Confirm)
		publicAttempt.POST("/:id/restart", h.Restart)
	}
}
