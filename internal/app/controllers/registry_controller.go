package controllers

import (
	"net/http"

	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/app/services"
	"github.com/alagappainfotech/student-registration-app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegistryController serves read-only organization, course and people listings
type RegistryController struct {
	registryService *services.RegistryService
}

// NewRegistryController creates a new RegistryController
func NewRegistryController(registryService *services.RegistryService) *RegistryController {
	return &RegistryController{registryService: registryService}
}

// ListOrganizations
// @Summary List organizations
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Organization}
// @Router /organizations [get]
func (c *RegistryController) ListOrganizations(ctx *gin.Context) {
	orgs, err := c.registryService.ListOrganizations(ctx.Request.Context())
	respond(ctx, orgs, err)
}

// ListClasses
// @Summary List classes
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Param organizationId query int false "Filter by organization"
// @Success 200 {object} dto.APIResponse{data=[]models.Class}
// @Router /classes [get]
func (c *RegistryController) ListClasses(ctx *gin.Context) {
	orgID, ok := optionalIDQuery(ctx, "organizationId")
	if !ok {
		return
	}
	classes, err := c.registryService.ListClasses(ctx.Request.Context(), orgID)
	respond(ctx, classes, err)
}

// ListSections
// @Summary List sections
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Filter by class"
// @Success 200 {object} dto.APIResponse{data=[]models.Section}
// @Router /sections [get]
func (c *RegistryController) ListSections(ctx *gin.Context) {
	classID, ok := optionalIDQuery(ctx, "classId")
	if !ok {
		return
	}
	sections, err := c.registryService.ListSections(ctx.Request.Context(), classID)
	respond(ctx, sections, err)
}

// ListCourses
// @Summary List courses
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Param organizationId query int false "Filter by organization"
// @Param sectionId query int false "Courses taken by students of this section"
// @Param active query bool false "Only active courses"
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Router /courses [get]
func (c *RegistryController) ListCourses(ctx *gin.Context) {
	orgID, ok := optionalIDQuery(ctx, "organizationId")
	if !ok {
		return
	}
	sectionID, ok := optionalIDQuery(ctx, "sectionId")
	if !ok {
		return
	}
	filter := repositories.CourseFilter{
		OrganizationID: orgID,
		SectionID:      sectionID,
		ActiveOnly:     ctx.Query("active") == "true",
	}
	courses, err := c.registryService.ListCourses(ctx.Request.Context(), filter)
	respond(ctx, courses, err)
}

// GetCourse
// @Summary Get a course
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *RegistryController) GetCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	course, err := c.registryService.GetCourse(ctx.Request.Context(), id)
	respond(ctx, course, err)
}

// ListFaculty
// @Summary List faculty members
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.FacultyDetail}
// @Router /faculty [get]
func (c *RegistryController) ListFaculty(ctx *gin.Context) {
	faculty, err := c.registryService.ListFaculty(ctx.Request.Context())
	respond(ctx, faculty, err)
}

// ListStudents returns the students visible to the caller
// @Summary List students
// @Description Admins see everyone, faculty see students in their courses, students see themselves
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive substring"
// @Param field query string false "name, email, phone or student_id; default matches name, email and phone"
// @Success 200 {object} dto.APIResponse{data=[]models.StudentDetail}
// @Failure 400 {object} dto.ErrorResponse "Unknown search field"
// @Router /students [get]
func (c *RegistryController) ListStudents(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	var query dto.StudentSearchQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	students, err := c.registryService.ListStudents(ctx.Request.Context(), caller,
		query.Search, repositories.StudentSearchField(query.Field))
	respond(ctx, students, err)
}

// ListProfiles
// @Summary List role profiles with their users
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ProfileDetail}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /profiles [get]
func (c *RegistryController) ListProfiles(ctx *gin.Context) {
	profiles, err := c.registryService.ListProfiles(ctx.Request.Context())
	respond(ctx, profiles, err)
}

func respond(ctx *gin.Context, data any, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: data})
}
