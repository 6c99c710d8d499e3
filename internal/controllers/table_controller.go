package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
)

type TableController struct {
	service services.TableService
}

func NewTableController(service services.TableService) *TableController {
	return &TableController{service: service}
}

type tableRequest struct {
	Number uint `json:"number" binding:"required,gt=0"`
}

// ListTables godoc
// @Summary List tables
// @Tags tables
// @Produce json
// @Param occupied query bool false "Filter by occupancy"
// @Success 200 {array} models.Table
// @Security BearerAuth
// @Router /api/v1/tables [get]
func (tc *TableController) ListTables(c *gin.Context) {
	occupied, ok := queryBool(c, "occupied")
	if !ok {
		return
	}
	tables, err := tc.service.ListTables(c.Request.Context(), occupied)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// GetTable godoc
// @Summary Get table
// @Tags tables
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} models.Table
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tables/{id} [get]
func (tc *TableController) GetTable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	table, err := tc.service.GetTable(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// CreateTable godoc
// @Summary Create table
// @Tags tables
// @Accept json
// @Produce json
// @Param table body tableRequest true "Table"
// @Success 201 {object} models.Table
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/tables [post]
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := tc.service.CreateTable(c.Request.Context(), req.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// UpdateTable godoc
// @Summary Renumber table
// @Tags tables
// @Accept json
// @Produce json
// @Param id path int true "Table ID"
// @Param table body tableRequest true "Table"
// @Success 200 {object} models.Table
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/tables/{id} [put]
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req tableRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := tc.service.RenumberTable(c.Request.Context(), id, req.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// DeleteTable godoc
// @Summary Delete table
// @Description Tables with an open order cannot be deleted
// @Tags tables
// @Param id path int true "Table ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/tables/{id} [delete]
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := tc.service.DeleteTable(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleTable godoc
// @Summary Toggle table occupancy
// @Description Release a table marked occupied that has no open order
// @Tags tables
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tables/{id}/toggle [post]
func (tc *TableController) ToggleTable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	table, err := tc.service.ToggleOccupancy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       table.ID,
		"number":   table.Number,
		"occupied": table.Occupied,
	})
}
