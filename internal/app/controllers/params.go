package controllers

import (
	"net/http"
	"strconv"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive int64 path parameter, writing a 400 when it is malformed.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// optionalIDQuery reads an optional positive int64 query parameter.
func optionalIDQuery(ctx *gin.Context, name string) (*int64, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return &id, true
}

// callerFromContext returns the authenticated caller or writes a 401.
func callerFromContext(ctx *gin.Context) (appauth.Caller, bool) {
	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return appauth.Caller{}, false
	}
	return caller, true
}
