package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Init swagger doc
	_ "jobportal-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"jobportal-backend/internal/auth"
	"jobportal-backend/internal/controller/application"
	"jobportal-backend/internal/controller/employer"
	"jobportal-backend/internal/controller/job"
	"jobportal-backend/internal/controller/notification"
	"jobportal-backend/internal/controller/resume"
	"jobportal-backend/internal/controller/seeker"
	"jobportal-backend/internal/middleware"
	"jobportal-backend/internal/model"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.HTTP.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SafeHeader(), middleware.SizeLimit(s.cfg.HTTP.MaxBodyBytes))

	authHandler := auth.NewHandler(s.accounts, s.logger)
	employerController := employer.NewController(s.jobs)
	jobController := job.NewController(s.jobs)
	applicationController := application.NewController(s.applications)
	resumeController := resume.NewController(s.resumes)
	seekerController := seeker.NewController(s.accounts)
	notificationController := notification.NewController(s.inbox)

	requireAuth := middleware.RequireAuth(s.creds)
	limiter := middleware.RateLimiter(middleware.NewRateLimitStore(s.redis, time.Second, s.cfg.RateLimit.RequestsPerSecond))
	authLimiter := middleware.ScopedRateLimiter("auth", middleware.NewRateLimitStore(s.redis, time.Minute, s.cfg.RateLimit.AuthPerMinute))

	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			public := authRoute.Group("", authLimiter)
			public.POST("signup", authHandler.Signup)
			public.POST("login", authHandler.Login)
			public.POST("refresh", authHandler.Refresh)
			public.POST("logout", authHandler.Logout)
			public.POST("verify-email", authHandler.VerifyEmail)
			public.POST("resend-verification", authHandler.ResendVerification)
			public.POST("forgot-password", authHandler.ForgotPassword)
			public.POST("reset-password", authHandler.ResetPassword)
			public.POST("google", authHandler.Google)

			private := authRoute.Group("", requireAuth, limiter)
			private.GET("me", authHandler.Me)
			private.POST("change-password", authLimiter, authHandler.ChangePassword)
			private.DELETE("account", authHandler.DeleteAccount)
		}

		// Public reads
		open := v1.Group("", limiter)
		{
			open.GET("/jobs/search", jobController.SearchJobs)
			open.GET("/jobs/:id", jobController.GetJob)
			open.GET("/employers/:id", employerController.GetEmployer)
		}

		needAuth := v1.Group("", requireAuth, limiter)
		{
			employerRoute := needAuth.Group("/employers")
			{
				employerRoute.POST("", middleware.CheckRole(model.RoleJobProvider), employerController.CreateEmployer)
				employerRoute.GET("/mine", employerController.MyEmployers)
				employerRoute.PATCH("/:id", employerController.UpdateEmployer)
				employerRoute.GET("/:id/admins", employerController.ListAdmins)
				employerRoute.POST("/:id/admins", employerController.AddAdmin)
				employerRoute.DELETE("/:id/admins/:userId", employerController.RemoveAdmin)
				employerRoute.POST("/:id/jobs", employerController.CreateJob)
				employerRoute.GET("/:id/jobs", employerController.GetEmployerJobs)
			}

			jobRoute := needAuth.Group("/jobs")
			{
				jobRoute.GET("/mine", jobController.GetMyJobs)
				jobRoute.PATCH("/:id", jobController.UpdateJob)
				jobRoute.PATCH("/:id/status", jobController.ChangeJobStatus)
				jobRoute.POST("/:id/apply", middleware.CheckRole(model.RoleJobSeeker), applicationController.Apply)
				jobRoute.GET("/:id/applications", applicationController.ListForJob)
			}

			applicationRoute := needAuth.Group("/applications")
			{
				applicationRoute.GET("/mine", middleware.CheckRole(model.RoleJobSeeker), applicationController.ListMine)
				applicationRoute.GET("/:id", applicationController.Get)
				applicationRoute.PATCH("/:id/status", applicationController.Transition)
			}

			// Seeker-only routes
			needSeeker := needAuth.Group("", middleware.CheckRole(model.RoleJobSeeker))
			{
				resumeRoute := needSeeker.Group("/resumes")
				{
					resumeRoute.POST("/upload-request", resumeController.RequestUpload)
					resumeRoute.POST("/upload-complete", resumeController.CompleteUpload)
					resumeRoute.GET("", resumeController.ListResumes)
					resumeRoute.GET("/:id/download", resumeController.Download)
					resumeRoute.DELETE("/:id", resumeController.DeleteResume)
				}

				needSeeker.GET("/seekers/me", seekerController.GetProfile)
				needSeeker.PATCH("/seekers/me", seekerController.UpdateProfile)
			}

			notificationRoute := needAuth.Group("/notifications")
			{
				notificationRoute.GET("", notificationController.List)
				notificationRoute.PATCH("/:id/read", notificationController.MarkRead)
				notificationRoute.POST("/read-all", notificationController.MarkAllRead)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func (s *MyServer) healthHandler(c *gin.Context) {
	health := s.DB.Health()
	if s.redis != nil {
		if err := s.redis.Ping(c.Request.Context()).Err(); err != nil {
			health["redis"] = "down"
		} else {
			health["redis"] = "up"
		}
	}
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
