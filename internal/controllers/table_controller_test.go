package controllers

import (
	"net/http"
	"testing"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTableRouter(db *gorm.DB, user models.User) *gin.Engine {
	controller := NewTableController(services.NewTableService(db))

	router := gin.New()
	api := router.Group("/api/v1", asUser(user))
	api.GET("/tables", controller.ListTables)
	api.GET("/tables/:id", controller.GetTable)
	api.POST("/tables/:id/toggle", controller.ToggleTable)
	api.POST("/admin/tables", controller.CreateTable)
	api.PUT("/admin/tables/:id", controller.UpdateTable)
	api.DELETE("/admin/tables/:id", controller.DeleteTable)
	return router
}

func TestTableEndpoints(t *testing.T) {
	db := setupTestDB(t)
	d := seedTestData(t, db)
	router := setupTableRouter(db, d.admin)

	w := performRequest(router, http.MethodPost, "/api/v1/admin/tables", gin.H{"number": 9})
	require.Equal(t, http.StatusCreated, w.Code)
	var table models.Table
	decode(t, w, &table)

	w = performRequest(router, http.MethodPost, "/api/v1/admin/tables", gin.H{"number": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrTableDuplicateNumber, errorCode(t, w))

	w = performRequest(router, http.MethodPost, "/api/v1/admin/tables", gin.H{"number": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPut, idPath("/api/v1/admin/tables", table.ID), gin.H{"number": 10})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &table)
	assert.Equal(t, uint(10), table.Number)

	w = performRequest(router, http.MethodPost, idPath("/api/v1/tables", table.ID)+"/toggle", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrTableNotOccupied, errorCode(t, w))

	require.NoError(t, db.Model(&models.Table{}).Where("id = ?", table.ID).Update("occupied", true).Error)

	w = performRequest(router, http.MethodGet, "/api/v1/tables?occupied=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var occupied []models.Table
	decode(t, w, &occupied)
	require.Len(t, occupied, 1)
	assert.Equal(t, uint(10), occupied[0].Number)

	w = performRequest(router, http.MethodPost, idPath("/api/v1/tables", table.ID)+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"occupied":false`)

	w = performRequest(router, http.MethodGet, "/api/v1/tables?occupied=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodDelete, idPath("/api/v1/admin/tables", table.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodGet, idPath("/api/v1/tables", table.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrTableNotFound, errorCode(t, w))
}

func TestToggleTableWithOpenOrder(t *testing.T) {
	db := setupTestDB(t)
	d := seedTestData(t, db)
	createOrder(t, setupOrderRouter(db, d.waiter), d.table.ID, d.carbonara.ID, 1)
	router := setupTableRouter(db, d.waiter)

	w := performRequest(router, http.MethodPost, idPath("/api/v1/tables", d.table.ID)+"/toggle", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrTableHasOpenOrder, errorCode(t, w))
}
