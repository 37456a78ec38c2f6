package controllers

import (
	"net/http"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/services"
	"github.com/alagappainfotech/student-registration-app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// DashboardController serves the role dashboards
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Admin returns organization, user and course aggregates
// @Summary Admin dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin access required"
// @Router /dashboard/admin [get]
func (c *DashboardController) Admin(ctx *gin.Context) {
	c.serve(ctx, func(caller appauth.Caller) (any, error) {
		return c.dashboardService.AdminView(ctx.Request.Context(), caller)
	})
}

// Student returns the caller's courses and grades
// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentDashboardResponse}
// @Failure 403 {object} dto.ErrorResponse "Student access required"
// @Failure 404 {object} dto.ErrorResponse "No student record (PRF_002)"
// @Router /dashboard/student [get]
func (c *DashboardController) Student(ctx *gin.Context) {
	c.serve(ctx, func(caller appauth.Caller) (any, error) {
		return c.dashboardService.StudentView(ctx.Request.Context(), caller)
	})
}

// Faculty returns the caller's courses, students and grades
// @Summary Faculty dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FacultyDashboardResponse}
// @Failure 403 {object} dto.ErrorResponse "Faculty access required"
// @Failure 404 {object} dto.ErrorResponse "No faculty record (PRF_003)"
// @Router /dashboard/faculty [get]
func (c *DashboardController) Faculty(ctx *gin.Context) {
	c.serve(ctx, func(caller appauth.Caller) (any, error) {
		return c.dashboardService.FacultyView(ctx.Request.Context(), caller)
	})
}

func (c *DashboardController) serve(ctx *gin.Context, view func(appauth.Caller) (any, error)) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	data, err := view(caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: data})
}
