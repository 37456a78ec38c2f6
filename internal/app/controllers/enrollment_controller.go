package controllers

import (
	"net/http"

	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/services"
	"github.com/alagappainfotech/student-registration-app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// EnrollmentController exposes the enrollment ledger and grades
type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// ListEnrollments
// @Summary List enrollments visible to the caller
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.EnrollmentDetail}
// @Router /enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	enrollments, err := c.enrollmentService.ListEnrollments(ctx.Request.Context(), caller)
	respond(ctx, enrollments, err)
}

// CreateEnrollment
// @Summary Enroll a student in a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEnrollmentRequest true "Enrollment"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment}
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /enrollments [post]
func (c *EnrollmentController) CreateEnrollment(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	var req dto.CreateEnrollmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.CreateEnrollment(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: enrollment})
}

// ListGrades
// @Summary List grades visible to the caller
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.GradeDetail}
// @Router /grades [get]
func (c *EnrollmentController) ListGrades(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	grades, err := c.enrollmentService.ListGrades(ctx.Request.Context(), caller)
	respond(ctx, grades, err)
}

// RecordGrade
// @Summary Record the grade of an enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordGradeRequest true "Grade"
// @Success 201 {object} dto.APIResponse{data=models.Grade}
// @Failure 403 {object} dto.ErrorResponse "Not the course's primary faculty"
// @Router /grades [post]
func (c *EnrollmentController) RecordGrade(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	var req dto.RecordGradeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	grade, err := c.enrollmentService.RecordGrade(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: grade})
}

// RecordGradesBulk
// @Summary Record several grades in one transaction
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkGradeRequest true "Grades"
// @Success 201 {object} dto.APIResponse{data=dto.BulkGradeResponse}
// @Router /grades/bulk [post]
func (c *EnrollmentController) RecordGradesBulk(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	var req dto.BulkGradeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.enrollmentService.RecordGradesBulk(ctx.Request.Context(), caller, req.Grades)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: resp})
}
