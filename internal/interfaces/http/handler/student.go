package handler

import (
	"context"

	appschool "github.com/elimu/backend/internal/application/school"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentHandler handles student lifecycle endpoints
type StudentHandler struct {
	BaseHandler
	studentService *appschool.StudentService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(studentService *appschool.StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
	}
}

// Enroll admits a new student
func (h *StudentHandler) Enroll(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appschool.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	student, err := h.studentService.EnrollStudent(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, student)
}

// GetByID retrieves a student with guardians
func (h *StudentHandler) GetByID(c *gin.Context) {
	schoolID, studentID, ok := h.scope(c)
	if !ok {
		return
	}

	student, err := h.studentService.GetStudentByID(c.Request.Context(), schoolID, studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, student)
}

// Update changes a student's personal details
func (h *StudentHandler) Update(c *gin.Context) {
	schoolID, studentID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appschool.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	student, err := h.studentService.UpdateStudent(c.Request.Context(), schoolID, studentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, student)
}

// AddGuardian attaches a guardian contact to the student
func (h *StudentHandler) AddGuardian(c *gin.Context) {
	schoolID, studentID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appschool.AddGuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	student, err := h.studentService.AddGuardian(c.Request.Context(), schoolID, studentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, student)
}

// Promote moves an active student to the next CBC level
func (h *StudentHandler) Promote(c *gin.Context) {
	h.transition(c, h.studentService.PromoteStudent)
}

// Suspend temporarily removes a student from the active roll
func (h *StudentHandler) Suspend(c *gin.Context) {
	h.transition(c, h.studentService.SuspendStudent)
}

// Reinstate returns a suspended student to active status
func (h *StudentHandler) Reinstate(c *gin.Context) {
	h.transition(c, h.studentService.ReinstateStudent)
}

// Graduate marks a student at the final level as graduated
func (h *StudentHandler) Graduate(c *gin.Context) {
	h.transition(c, h.studentService.GraduateStudent)
}

// Withdraw removes a student from the school with a reason
func (h *StudentHandler) Withdraw(c *gin.Context) {
	schoolID, studentID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appschool.WithdrawStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	student, err := h.studentService.WithdrawStudent(c.Request.Context(), schoolID, studentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, student)
}

// List retrieves a paginated list of students
func (h *StudentHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appschool.StudentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	students, total, err := h.studentService.ListStudents(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, students, total, filter.Page, filter.PageSize)
}

func (h *StudentHandler) transition(c *gin.Context, op func(ctx context.Context, schoolID, id uuid.UUID) (*appschool.StudentResponse, error)) {
	schoolID, studentID, ok := h.scope(c)
	if !ok {
		return
	}

	student, err := op(c.Request.Context(), schoolID, studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, student)
}

func (h *StudentHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, studentID, true
}
