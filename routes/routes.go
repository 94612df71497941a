package routes

import (
	"peer-review-api/controllers"
	"peer-review-api/middleware"
	"peer-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Peer Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			instructor := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)

			// Review mappings per assignment
			assignments := protected.Group("/assignments")
			{
				assignments.GET("/:id/mappings", instructor, controllers.ListMappings)

				// Students pull their own work dynamically
				assignments.POST("/:id/reviewers/dynamic", controllers.AssignReviewerDynamically)
				assignments.POST("/:id/metareviewers/dynamic", controllers.AssignMetareviewerDynamically)
				assignments.POST("/:id/quizzes/dynamic", controllers.AssignQuizDynamically)
				assignments.POST("/:id/self-review", controllers.StartSelfReview)

				// Instructor-driven mapping management
				assignments.POST("/:id/reviewers", instructor, controllers.AddReviewer)
				assignments.POST("/:id/calibration", instructor, controllers.AddCalibration)
				assignments.POST("/:id/automatic-review-mapping", instructor, controllers.AutomaticReviewMapping)
				assignments.POST("/:id/automatic-review-mapping/staggered", instructor, controllers.AutomaticReviewMappingStaggered)
				assignments.DELETE("/:id/outstanding-reviewers", instructor, controllers.DeleteOutstandingReviewers)
			}

			// Individual mappings
			maps := protected.Group("/review-maps")
			{
				maps.POST("/:id/metareviewers", instructor, controllers.AddMetareviewer)
				maps.DELETE("/:id/metareviewers", instructor, controllers.DeleteAllMetareviewers)
				maps.DELETE("/:id", instructor, controllers.DeleteReviewer)
				maps.POST("/:id/unsubmit", instructor, controllers.UnsubmitReview)
			}

			metareviews := protected.Group("/metareviews")
			{
				metareviews.DELETE("/:id", instructor, controllers.DeleteMetareviewer)
				metareviews.DELETE("/:id/force", instructor, controllers.DeleteMetareview)
			}

			// Reviewer performance grades
			protected.POST("/review-grades", instructor, controllers.SaveGradeAndCommentForReviewer)
		}
	}
}
