package controllers

import (
	"net/http"

	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/services"
	"github.com/alagappainfotech/student-registration-app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// StudentController exposes admin student management and the per-faculty course views
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// GetStudent
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentDetail}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	student, err := c.studentService.Get(ctx.Request.Context(), id)
	respond(ctx, student, err)
}

// CreateStudent creates a student together with its login account
// @Summary Create a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student details"
// @Success 201 {object} dto.APIResponse{data=models.StudentDetail}
// @Failure 400 {object} dto.ErrorResponse "Validation error, duplicate email or bad placement"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: student})
}

// UpdateStudent
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.StudentDetail}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [patch]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	student, err := c.studentService.Update(ctx.Request.Context(), id, &req)
	respond(ctx, student, err)
}

// SetStudentCourses
// @Summary Replace a student's courses
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.SetStudentCoursesRequest true "Course ids"
// @Success 200 {object} dto.APIResponse{data=dto.StudentCoursesResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown course id"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/courses [put]
func (c *StudentController) SetStudentCourses(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SetStudentCoursesRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.studentService.SetCourses(ctx.Request.Context(), id, req.CourseIDs)
	respond(ctx, resp, err)
}

// FacultyCourses
// @Summary List the courses a faculty member leads
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Failure 403 {object} dto.ErrorResponse "Not this faculty member"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Router /faculty/{id}/courses [get]
func (c *StudentController) FacultyCourses(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	facultyID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	courses, err := c.studentService.FacultyCourses(ctx.Request.Context(), caller, facultyID)
	respond(ctx, courses, err)
}

// FacultyCourseStudents
// @Summary List the students of one of a faculty member's courses
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.StudentDetail}
// @Failure 403 {object} dto.ErrorResponse "Not this faculty member"
// @Failure 404 {object} dto.ErrorResponse "Faculty or course not found"
// @Router /faculty/{id}/courses/{courseId}/students [get]
func (c *StudentController) FacultyCourseStudents(ctx *gin.Context) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return
	}
	facultyID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}
	students, err := c.studentService.FacultyCourseStudents(ctx.Request.Context(), caller, facultyID, courseID)
	respond(ctx, students, err)
}
