package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/amitsuman46/video-progress-tracker/internal/auth"
	"github.com/amitsuman46/video-progress-tracker/internal/handlers"
	"github.com/amitsuman46/video-progress-tracker/internal/middleware"
)

// Handlers bundles the constructed handler set for route registration
type Handlers struct {
	Me       *handlers.MeHandler
	Courses  *handlers.CourseHandler
	Progress *handlers.ProgressHandler
	Stream   *handlers.StreamHandler
	Admin    *handlers.AdminHandler
}

// Setup registers every route under /api. Everything requires a verified
// identity except the raw byte stream, which authenticates with its own
// capability token; /admin additionally requires the allow-list.
func Setup(r *gin.Engine, verifier auth.Verifier, allowlist *auth.Allowlist, h Handlers) {
	limiter := middleware.NewIPRateLimiter(rate.Limit(20), 40)

	// Video elements cannot send Authorization headers, so the stream route
	// sits outside the auth group and trusts the minted token alone
	public := r.Group("/api")
	public.Use(limiter.Middleware())
	public.GET("/courses/:id/videos/:videoId/stream", h.Stream.Stream)

	api := r.Group("/api")
	api.Use(limiter.Middleware())
	api.Use(middleware.AuthMiddleware(verifier))
	{
		api.GET("/me", h.Me.GetMe)

		api.GET("/courses", h.Courses.ListCourses)
		api.GET("/courses/:id", h.Courses.GetCourseTree)
		api.GET("/courses/:id/leaderboard", h.Courses.GetLeaderboard)
		api.GET("/courses/:id/progress", h.Progress.GetForCourse)
		api.GET("/courses/:id/videos/:videoId", h.Courses.GetVideo)
		api.GET("/courses/:id/videos/:videoId/stream-url", h.Stream.GetStreamURL)

		api.GET("/progress", h.Progress.GetAll)
		api.GET("/progress/one", h.Progress.GetOne)
		api.POST("/progress", h.Progress.Save)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminOnly(allowlist))
		{
			admin.POST("/sync", h.Admin.SyncCourse)
			admin.POST("/courses/:id/sync", h.Admin.ResyncCourse)
		}
	}
}
