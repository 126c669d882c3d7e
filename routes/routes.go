package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/controllers"
	"github.com/classpilot/lms-backend/middleware"
	"github.com/classpilot/lms-backend/services"
	"github.com/classpilot/lms-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB, ai services.Completer) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
	}

	// Teacher/admin surface
	admin := api.Group("/admin")
	{
		admin.Use(
			middleware.AuthMiddleware(),
			middleware.DBMiddleware(db),
			middleware.AIMiddleware(ai),
			middleware.RequireRoles("admin", "teacher"),
		)

		// Lessons
		admin.POST("/lessons", controllers.CreateLesson)
		admin.POST("/lessons/generate", controllers.GenerateLesson)
		admin.GET("/lessons", controllers.GetLessons)
		admin.GET("/lessons/:id", controllers.GetLessonDetail)
		admin.PUT("/lessons/:id", controllers.UpdateLesson)
		admin.DELETE("/lessons/:id", controllers.DeleteLesson)

		// Assessments
		admin.POST("/assessments", controllers.CreateAssessment)
		admin.POST("/assessments/generate", controllers.GenerateAssessment)
		admin.GET("/assessments", controllers.GetAssessments)
		admin.GET("/assessments/:id", controllers.GetAssessmentDetail)
		admin.PUT("/assessments/:id", controllers.UpdateAssessment)
		admin.DELETE("/assessments/:id", controllers.DeleteAssessment)
		admin.GET("/assessments/:id/submissions", controllers.GetAssessmentSubmissions)

		// Grades & gradebook
		admin.GET("/grades", controllers.GetGrades)
		admin.PUT("/grades/:id", controllers.UpdateGrade)
		admin.GET("/gradebook", controllers.GetGradebook)
		admin.GET("/students", controllers.GetStudents)
		admin.GET("/students/:id/grades", controllers.GetStudentGrades)
		admin.GET("/submissions/:id", controllers.GetSubmissionDetail)

		// Materials
		admin.POST("/materials", controllers.UploadMaterial)
		admin.GET("/materials", controllers.GetMaterials)
		admin.DELETE("/materials/:id", controllers.DeleteMaterial)

		// Calendar
		admin.POST("/events", controllers.CreateEvent)
		admin.GET("/events", controllers.GetEvents)
		admin.PUT("/events/:id", controllers.UpdateEvent)
		admin.DELETE("/events/:id", controllers.DeleteEvent)
	}

	// Admin-only account management
	accounts := api.Group("/admin/users")
	{
		accounts.Use(
			middleware.AuthMiddleware(),
			middleware.DBMiddleware(db),
			middleware.RequireRoles("admin"),
		)
		accounts.GET("", controllers.GetUsers)
		accounts.POST("", controllers.CreateUser)
		accounts.PUT("/:id", controllers.UpdateUser)
		accounts.DELETE("/:id", controllers.DeleteUser)
	}

	// Student surface
	student := api.Group("/student")
	{
		student.Use(
			middleware.AuthMiddleware(),
			middleware.DBMiddleware(db),
			middleware.AIMiddleware(ai),
			middleware.RequireRoles("student"),
		)

		student.GET("/lessons", controllers.GetLessons)
		student.GET("/lessons/:id", controllers.GetLessonDetail)
		student.GET("/assessments", controllers.GetAssessments)
		student.GET("/assessments/:id", controllers.GetAssessmentDetail)
		student.GET("/events", controllers.GetEvents)
		student.POST("/submissions", controllers.SubmitAssessment)
		student.GET("/submissions/:id", controllers.GetSubmissionDetail)
		student.GET("/grades", controllers.GetMyGrades)
		student.POST("/tutor", controllers.TutorChat)
		student.GET("/tutor/history", controllers.GetTutorHistory)
	}

	r.GET("/ws/material/:id", ws.HandleMaterialWebSocket)
	r.GET("/ws/grades", ws.HandleStudentWebSocket)

	return r
}
