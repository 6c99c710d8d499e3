package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
)

type EmployeeController struct {
	service services.EmployeeService
}

func NewEmployeeController(service services.EmployeeService) *EmployeeController {
	return &EmployeeController{service: service}
}

type createEmployeeRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=6"`
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"required,employee_role"`
	Phone     string `json:"phone" binding:"max=20"`
}

type updateEmployeeRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role" binding:"omitempty,employee_role"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
}

// ListEmployees godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Success 200 {array} models.Employee
// @Security BearerAuth
// @Router /api/v1/admin/employees [get]
func (ec *EmployeeController) ListEmployees(c *gin.Context) {
	employees, err := ec.service.ListEmployees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// GetEmployee godoc
// @Summary Get employee
// @Tags employees
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} models.Employee
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/employees/{id} [get]
func (ec *EmployeeController) GetEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	employee, err := ec.service.GetEmployee(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// CreateEmployee godoc
// @Summary Hire employee
// @Description Create the user account and employee record; the hire date is today
// @Tags employees
// @Accept json
// @Produce json
// @Param employee body createEmployeeRequest true "Employee"
// @Success 201 {object} models.Employee
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/employees [post]
func (ec *EmployeeController) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := ec.service.CreateEmployee(c.Request.Context(), services.NewEmployee{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee godoc
// @Summary Update employee
// @Description Change personal data, role, phone or reset the password
// @Tags employees
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param employee body updateEmployeeRequest true "Fields to change"
// @Success 200 {object} models.Employee
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/employees/{id} [put]
func (ec *EmployeeController) UpdateEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := ec.service.UpdateEmployee(c.Request.Context(), id, services.EmployeeUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee godoc
// @Summary Delete employee
// @Description Remove the employee and its account; their orders are kept without a waiter
// @Tags employees
// @Param id path int true "Employee ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/employees/{id} [delete]
func (ec *EmployeeController) DeleteEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ec.service.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
