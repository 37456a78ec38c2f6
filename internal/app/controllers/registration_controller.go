package controllers

import (
	"net/http"

	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/services"
	"github.com/alagappainfotech/student-registration-app/internal/middleware"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RegistrationController exposes the registration request workflow
type RegistrationController struct {
	registrationService *services.RegistrationService
	logger              zerolog.Logger
}

// NewRegistrationController creates a new RegistrationController
func NewRegistrationController(registrationService *services.RegistrationService, logger zerolog.Logger) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
		logger:              logger,
	}
}

// Submit handles the public registration form
// @Summary Submit a registration request
// @Description Creates a pending request and notifies the administrators
// @Tags registration
// @Accept json
// @Produce json
// @Param request body dto.SubmitRegistrationRequest true "Applicant details"
// @Success 201 {object} dto.APIResponse{data=dto.IDResponse} "Request submitted"
// @Failure 400 {object} dto.ErrorResponse "Validation errors"
// @Router /registration-request [post]
func (c *RegistrationController) Submit(ctx *gin.Context) {
	var req dto.SubmitRegistrationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	request, err := c.registrationService.Submit(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: dto.IDResponse{
		ID:      request.ID,
		Message: "Registration request submitted successfully",
	}})
}

// List returns registration requests, newest first
// @Summary List registration requests
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationListResponse}
// @Router /registration-requests [get]
func (c *RegistrationController) List(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.registrationService.List(ctx.Request.Context(), ctx.Query("status"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Get returns one registration request
// @Summary Get a registration request
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /registration-requests/{id} [get]
func (c *RegistrationController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	request, err := c.registrationService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewRegistrationResponse(request)})
}

// Update edits a pending registration request
// @Summary Update a pending registration request
// @Tags registration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.UpdateRegistrationRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed or request already processed"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /registration-requests/{id} [patch]
func (c *RegistrationController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRegistrationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	request, err := c.registrationService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewRegistrationResponse(request)})
}

// Approve provisions the account for a pending request
// @Summary Approve a registration request
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveRegistrationResponse}
// @Failure 400 {object} dto.ErrorResponse "Already processed (REG_001) or email exists (REG_002)"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 500 {object} dto.ErrorResponse "Account provisioning failed"
// @Router /registration-requests/{id}/approve [post]
func (c *RegistrationController) Approve(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.registrationService.Approve(ctx.Request.Context(), id, caller.UserID)
	if err != nil {
		c.logger.Warn().Err(err).Int64("requestID", id).Msg("Approval failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Reject declines a pending request
// @Summary Reject a registration request
// @Tags registration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.RejectRegistrationRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=dto.RejectRegistrationResponse}
// @Failure 400 {object} dto.ErrorResponse "Already processed"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /registration-requests/{id}/reject [post]
func (c *RegistrationController) Reject(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.RejectRegistrationRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.registrationService.Reject(ctx.Request.Context(), id, caller.UserID, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}
