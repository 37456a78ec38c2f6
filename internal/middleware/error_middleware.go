package middleware

import (
	"errors"
	"net/http"

	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/dberrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/logger"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/observability"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// InvalidCredentialsMessage is the single answer for unknown users and wrong passwords.
const InvalidCredentialsMessage = "Invalid credentials. Please check your email and password."

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order; the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, InvalidCredentialsMessage},
	{apperrors.ErrUserNotFound, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, InvalidCredentialsMessage},
	{apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, "This account is inactive. Please contact an administrator."},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeTokenRevoked, "Token has been revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrNoProfile, http.StatusNotFound, dto.ErrorCodeNoProfile, "User profile not found"},
	{apperrors.ErrNoStudentRecord, http.StatusNotFound, dto.ErrorCodeNoStudentRecord, "No student record found for this user"},
	{apperrors.ErrNoFacultyRecord, http.StatusNotFound, dto.ErrorCodeNoFacultyRecord, "No faculty record found for this user"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrAlreadyProcessed, http.StatusBadRequest, dto.ErrorCodeAlreadyProcessed, "This request has already been processed"},
	{apperrors.ErrEmailAlreadyExists, http.StatusBadRequest, dto.ErrorCodeEmailExists, "A user with this email already exists"},
	{apperrors.ErrInvalidPasswordResetToken, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired password reset link"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Bad request"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrProvisioningFailed, http.StatusInternalServerError, dto.ErrorCodeProvisioningFailed, "Failed to create the user account"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	custom, hasCustom := apperrors.AsCustom(err)
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		if hasCustom && m.status != http.StatusUnauthorized {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			if len(custom.Details) > 0 {
				detail.WithDetails(custom.Details)
				if field, ok := custom.Details["field"].(string); ok {
					detail.WithField(field)
				}
			}
		}
		if m.status >= http.StatusInternalServerError {
			detail.WithSeverity(dto.ErrorSeverityCritical)
		}
		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	switch {
	case dberrors.IsValueTooLong(err):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A value exceeds the allowed length")
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
	case dberrors.IsDatabaseError(err):
		internalError(c, err, dto.ErrorCodeDatabaseError, "Database error")
	default:
		internalError(c, err, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// internalError answers with a correlation id the client can quote.
func internalError(c *gin.Context, err error, code dto.ErrorCode, message string) {
	errorID := uuid.NewString()
	logger.Error().Err(err).
		Str("errorId", errorID).
		Str("code", string(code)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")
	observability.CaptureWithID(err, errorID, map[string]string{"route": c.FullPath()})

	detail := dto.NewErrorDetail(code, message).
		WithDetails(map[string]string{"errorId": errorID})
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
}
