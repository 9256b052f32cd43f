package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/api/handler"
	"ourcodingkiddos/backend/internal/api/middleware"
	"ourcodingkiddos/backend/pkg/jwt"
	"ourcodingkiddos/backend/pkg/redis"
	"ourcodingkiddos/backend/pkg/response"
)

// Setup builds the Gin engine. rdb may be nil; token revocation and shared
// rate limits then fall back to their in-process behaviour.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	r := gin.New()
	// rate limits key on ClientIP, so forwarded headers only count from known proxies
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, ignoring forwarded headers", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	// ── global middleware ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	if cfg.Telemetry.Enabled {
		r.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(cfg.Auth.Cookie.Secure))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.GET("/health", healthCheck(db, rdb))

	if cfg.Storage.Driver == "local" && cfg.Storage.LocalDir != "" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	var blacklist middleware.Blacklist
	if rdb != nil {
		blacklist = rdb
	}
	sessionAuth := middleware.SessionAuth(jwtMgr, blacklist)
	optionalAuth := middleware.OptionalAuth(jwtMgr, blacklist)

	authLimit := middleware.RateLimit("auth",
		middleware.NewLimiter(rdb, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow),
		"too many attempts, try again later", logger)
	contactLimit := middleware.RateLimit("contact",
		middleware.NewLimiter(rdb, cfg.RateLimit.ContactLimit, cfg.RateLimit.ContactWindow),
		"too many messages, try again later", logger)

	api := r.Group("/api")

	// ── auth ──
	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimit, h.Auth.Register)
		auth.POST("/login", authLimit, h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", sessionAuth, h.Auth.Me)
		auth.PUT("/password", sessionAuth, h.Auth.ChangePassword)
	}

	// ── public catalog and content (identity optional) ──
	public := api.Group("")
	public.Use(optionalAuth)
	{
		public.GET("/programs", h.Catalog.ListPrograms)
		public.GET("/programs/:slug", h.Catalog.GetProgram)
		public.GET("/courses", h.Catalog.ListCourses)
		public.GET("/courses/:slug", h.Catalog.GetCourse)
		public.GET("/courses/:slug/sessions", h.Catalog.ListSessions)
		public.GET("/courses/:slug/reviews", h.Review.List)

		public.GET("/badges", h.Gamification.ListBadges)
		public.GET("/leaderboard", h.Gamification.Leaderboard)

		public.GET("/blog", h.Blog.List)
		public.GET("/blog/:slug", h.Blog.Get)
		public.GET("/blog/:slug/comments", h.Blog.ListComments)

		public.GET("/showcase", h.Showcase.List)
		public.GET("/showcase/:slug", h.Showcase.Get)

		public.GET("/certificates/verify", h.Certificate.Verify)
		public.POST("/certificates/verify", h.Certificate.Verify)
		public.GET("/certificates/:code/image", h.Certificate.Image)

		public.GET("/pages", h.Page.List)
		public.GET("/pages/:slug", h.Page.Get)

		public.POST("/contact", contactLimit, h.Contact.Submit)
		public.POST("/payments/webhook", h.Payment.Webhook)
	}

	// ── signed-in users ──
	authed := api.Group("")
	authed.Use(sessionAuth)
	{
		authed.GET("/courses/:slug/lessons/:lessonSlug", h.Catalog.GetLesson)
		authed.POST("/courses/:slug/reviews", h.Review.Create)
		authed.PUT("/reviews/:id", h.Review.Update)
		authed.DELETE("/reviews/:id", h.Review.Delete)

		authed.POST("/enrollments", h.Enrollment.Enroll)
		authed.PATCH("/enrollments/:id/status", h.Enrollment.UpdateStatus)
		authed.POST("/lessons/:id/complete", h.Enrollment.CompleteLesson)

		students := authed.Group("/students/:id")
		{
			students.GET("/enrollments", h.Enrollment.ListByStudent)
			students.GET("/calendar.ics", h.Enrollment.Calendar)
			students.GET("/badges", h.Gamification.StudentBadges)
			students.GET("/assignments", h.Assignment.ListForStudent)
			students.GET("/certificates", h.Certificate.ListByStudent)
		}

		authed.POST("/assignments/:id/submit", h.Assignment.Submit)

		authed.POST("/blog/:slug/comments", h.Blog.AddComment)
		authed.POST("/blog/:slug/like", h.Blog.ToggleLike)

		authed.POST("/showcase", h.Showcase.Submit)
		authed.POST("/showcase/upload", h.Showcase.Upload)
		authed.POST("/showcase/:slug/like", h.Showcase.ToggleLike)

		authed.GET("/payments", h.Payment.ListMine)
		authed.POST("/payments/checkout", middleware.RoleAuth("parent", "admin"), h.Payment.Checkout)

		parent := authed.Group("/parent")
		parent.Use(middleware.RoleAuth("parent"))
		{
			parent.GET("/children", h.User.ListChildren)
			parent.POST("/children", h.User.CreateChild)
			parent.GET("/children/:id/progress", h.User.ChildProgress)
		}

		// ── instructors and admins ──
		manage := authed.Group("/manage")
		manage.Use(middleware.RoleAuth("admin", "instructor"))
		{
			manage.POST("/courses", h.Catalog.CreateCourse)
			manage.PUT("/courses/:id", h.Catalog.UpdateCourse)
			manage.PATCH("/courses/:id/publish", h.Catalog.PublishCourse)
			manage.DELETE("/courses/:id", h.Catalog.DeleteCourse)

			manage.POST("/courses/:id/lessons", h.Catalog.CreateLesson)
			manage.PUT("/lessons/:id", h.Catalog.UpdateLesson)
			manage.DELETE("/lessons/:id", h.Catalog.DeleteLesson)

			manage.POST("/courses/:id/sessions", h.Catalog.CreateSession)
			manage.POST("/courses/:id/sessions/import", h.Catalog.ImportSessions)
			manage.PUT("/sessions/:id", h.Catalog.UpdateSession)
			manage.DELETE("/sessions/:id", h.Catalog.DeleteSession)

			manage.POST("/courses/:id/assignments", h.Assignment.Create)
			manage.GET("/courses/:id/assignments", h.Assignment.ListByCourse)
			manage.PUT("/assignments/:id", h.Assignment.Update)
			manage.DELETE("/assignments/:id", h.Assignment.Delete)
			manage.GET("/assignments/:id/submissions", h.Assignment.ListSubmissions)
			manage.POST("/submissions/:id/grade", h.Assignment.Grade)
			manage.POST("/submissions/:id/return", h.Assignment.Return)
		}

		// ── admins ──
		admin := authed.Group("/admin")
		admin.Use(middleware.RoleAuth("admin"))
		{
			admin.GET("/users", h.User.ListUsers)
			admin.POST("/users", h.User.CreateUser)
			admin.PUT("/users/:id", h.User.UpdateUser)
			admin.DELETE("/users/:id", h.User.DeleteUser)
			admin.POST("/users/:id/reset-password", h.User.ResetPassword)

			admin.GET("/programs", h.Catalog.AdminListPrograms)
			admin.POST("/programs", h.Catalog.CreateProgram)
			admin.PUT("/programs/:id", h.Catalog.UpdateProgram)
			admin.DELETE("/programs/:id", h.Catalog.DeleteProgram)

			admin.GET("/badges", h.Gamification.AdminListBadges)
			admin.POST("/badges", h.Gamification.CreateBadge)
			admin.PUT("/badges/:id", h.Gamification.UpdateBadge)
			admin.DELETE("/badges/:id", h.Gamification.DeleteBadge)

			admin.GET("/blog", h.Blog.AdminList)
			admin.GET("/blog/:id", h.Blog.AdminGet)
			admin.POST("/blog", h.Blog.Create)
			admin.PUT("/blog/:id", h.Blog.Update)
			admin.DELETE("/blog/:id", h.Blog.Delete)
			admin.PATCH("/blog/:id/publish", h.Blog.Publish)
			admin.GET("/comments", h.Blog.ModerationQueue)
			admin.PATCH("/comments/:id", h.Blog.ApproveComment)
			admin.DELETE("/comments/:id", h.Blog.DeleteComment)

			admin.GET("/showcase", h.Showcase.ReviewQueue)
			admin.PATCH("/showcase/:id/review", h.Showcase.Review)

			admin.POST("/certificates", h.Certificate.Issue)

			admin.GET("/contact", h.Contact.List)
			admin.PATCH("/contact/:id", h.Contact.UpdateStatus)

			admin.PUT("/pages/:slug", h.Page.Upsert)

			admin.POST("/bulk/import", h.Bulk.ImportUsers)
			admin.POST("/bulk/enroll", h.Bulk.Enroll)
			admin.POST("/bulk/status", h.Bulk.Status)
			admin.GET("/export/enrollments", h.Bulk.ExportEnrollments)
			admin.GET("/stats", h.Bulk.Stats)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.CodeValidation, "route not found")
	})

	return r
}

// healthCheck reports degraded when the database is unreachable. Redis is optional.
func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			if err := rdb.Ping(ctx); err != nil {
				status["redis"] = "unreachable"
			} else {
				status["redis"] = "ok"
			}
		}
		c.JSON(code, status)
	}
}
