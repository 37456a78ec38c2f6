package routes

import (
	"net/http"

	"github.com/alagappainfotech/student-registration-app/internal/app/controllers"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/middleware"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Auth         *controllers.AuthController
	Registration *controllers.RegistrationController
	Dashboard    *controllers.DashboardController
	Registry     *controllers.RegistryController
	Enrollment   *controllers.EnrollmentController
	Student      *controllers.StudentController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware, metricsEnabled bool) {
	health := func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })
	if metricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/health", health)
	v1.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/token/refresh", ctrl.Auth.RefreshToken)
		auth.POST("/password-reset", ctrl.Auth.RequestPasswordReset)
		auth.POST("/password-reset/confirm", ctrl.Auth.ConfirmPasswordReset)
	}
	v1.POST("/registration-request", ctrl.Registration.Submit)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)
		authenticated.GET("/auth/user-info", ctrl.Auth.UserInfo)

		requests := authenticated.Group("/registration-requests")
		{
			requests.GET("", ctrl.Registration.List)

			admin := requests.Group("")
			admin.Use(authMiddleware.AdminRequired())
			{
				admin.GET("/:id", ctrl.Registration.Get)
				admin.PATCH("/:id", ctrl.Registration.Update)
				admin.POST("/:id/approve", ctrl.Registration.Approve)
				admin.POST("/:id/reject", ctrl.Registration.Reject)
			}
		}

		// Role checks happen in the service so a missing record and a wrong role stay distinct.
		dashboard := authenticated.Group("/dashboard")
		{
			dashboard.GET("/admin", ctrl.Dashboard.Admin)
			dashboard.GET("/student", ctrl.Dashboard.Student)
			dashboard.GET("/faculty", ctrl.Dashboard.Faculty)
		}

		authenticated.GET("/organizations", ctrl.Registry.ListOrganizations)
		authenticated.GET("/classes", ctrl.Registry.ListClasses)
		authenticated.GET("/sections", ctrl.Registry.ListSections)
		authenticated.GET("/courses", ctrl.Registry.ListCourses)
		authenticated.GET("/courses/:id", ctrl.Registry.GetCourse)
		authenticated.GET("/faculty", ctrl.Registry.ListFaculty)
		authenticated.GET("/students", ctrl.Registry.ListStudents)

		// Faculty may only open their own id; the service enforces that.
		facultyCourses := authenticated.Group("/faculty/:id/courses")
		facultyCourses.Use(authMiddleware.RoleRequired(models.RoleFaculty, models.RoleAdmin))
		{
			facultyCourses.GET("", ctrl.Student.FacultyCourses)
			facultyCourses.GET("/:courseId/students", ctrl.Student.FacultyCourseStudents)
		}

		studentAdmin := authenticated.Group("/students")
		studentAdmin.Use(authMiddleware.AdminRequired())
		{
			studentAdmin.POST("", ctrl.Student.CreateStudent)
			studentAdmin.GET("/:id", ctrl.Student.GetStudent)
			studentAdmin.PATCH("/:id", ctrl.Student.UpdateStudent)
			studentAdmin.PUT("/:id/courses", ctrl.Student.SetStudentCourses)
			studentAdmin.PATCH("/:id/courses", ctrl.Student.SetStudentCourses)
		}
		authenticated.GET("/profiles", authMiddleware.AdminRequired(), ctrl.Registry.ListProfiles)

		authenticated.GET("/enrollments", ctrl.Enrollment.ListEnrollments)
		authenticated.POST("/enrollments", authMiddleware.AdminRequired(), ctrl.Enrollment.CreateEnrollment)

		grades := authenticated.Group("/grades")
		grades.GET("", ctrl.Enrollment.ListGrades)
		gradeWriters := grades.Group("")
		gradeWriters.Use(authMiddleware.RoleRequired(models.RoleFaculty, models.RoleAdmin))
		{
			gradeWriters.POST("", ctrl.Enrollment.RecordGrade)
			gradeWriters.POST("/bulk", ctrl.Enrollment.RecordGradesBulk)
		}
	}
}
