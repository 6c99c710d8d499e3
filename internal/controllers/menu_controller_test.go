package controllers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMenuRouter(db *gorm.DB, user models.User) *gin.Engine {
	controller := NewMenuController(services.NewCategoryService(db), services.NewDishService(db))

	router := gin.New()
	api := router.Group("/api/v1", asUser(user))
	api.GET("/menu/categories", controller.ListCategories)
	api.GET("/menu/categories/:id", controller.GetCategory)
	api.GET("/menu/dishes", controller.ListDishes)
	api.GET("/menu/dishes/:id", controller.GetDish)
	api.POST("/admin/categories", controller.CreateCategory)
	api.PUT("/admin/categories/:id", controller.UpdateCategory)
	api.DELETE("/admin/categories/:id", controller.DeleteCategory)
	api.POST("/admin/dishes", controller.CreateDish)
	api.PUT("/admin/dishes/:id", controller.UpdateDish)
	api.DELETE("/admin/dishes/:id", controller.DeleteDish)
	api.PATCH("/admin/dishes/:id/availability", controller.ToggleDishAvailability)
	return router
}

func idPath(prefix string, id uint) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10)
}

func TestCategoryEndpoints(t *testing.T) {
	db := setupTestDB(t)
	d := seedTestData(t, db)
	router := setupMenuRouter(db, d.admin)

	w := performRequest(router, http.MethodPost, "/api/v1/admin/categories", gin.H{"name": "Dolci"})
	require.Equal(t, http.StatusCreated, w.Code)
	var dolci models.Category
	decode(t, w, &dolci)

	w = performRequest(router, http.MethodPost, "/api/v1/admin/categories", gin.H{"name": "Pasta"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrCategoryDuplicateName, errorCode(t, w))

	w = performRequest(router, http.MethodPost, "/api/v1/admin/categories", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/menu/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []services.CategorySummary
	decode(t, w, &summaries)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Pasta", summaries[1].Name)
	assert.Equal(t, int64(2), summaries[1].DishCount)

	w = performRequest(router, http.MethodPut, idPath("/api/v1/admin/categories", dolci.ID), gin.H{"name": "Desserts"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dolci)
	assert.Equal(t, "Desserts", dolci.Name)

	// categories with dishes stay
	w = performRequest(router, http.MethodDelete, idPath("/api/v1/admin/categories", d.pasta.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrCategoryHasDishes, errorCode(t, w))

	w = performRequest(router, http.MethodDelete, idPath("/api/v1/admin/categories", dolci.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodGet, idPath("/api/v1/menu/categories", dolci.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrCategoryNotFound, errorCode(t, w))
}

func TestDishEndpoints(t *testing.T) {
	db := setupTestDB(t)
	d := seedTestData(t, db)
	router := setupMenuRouter(db, d.admin)

	w := performRequest(router, http.MethodPost, "/api/v1/admin/dishes", gin.H{
		"name":        "Gnocchi",
		"price":       11.5,
		"category_id": d.pasta.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var gnocchi models.Dish
	decode(t, w, &gnocchi)
	assert.True(t, gnocchi.Available)

	w = performRequest(router, http.MethodPost, "/api/v1/admin/dishes", gin.H{"name": "Bad", "price": -3, "category_id": d.pasta.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/admin/dishes", gin.H{"name": "Lost", "price": 3, "category_id": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrCategoryNotFound, errorCode(t, w))

	w = performRequest(router, http.MethodPut, idPath("/api/v1/admin/dishes", gnocchi.ID), gin.H{"price": 12.75})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &gnocchi)
	assert.InDelta(t, 12.75, gnocchi.Price, 0.001)
	assert.Equal(t, "Gnocchi", gnocchi.Name)

	w = performRequest(router, http.MethodGet, "/api/v1/menu/dishes?available=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var available []models.Dish
	decode(t, w, &available)
	assert.Len(t, available, 2)

	w = performRequest(router, http.MethodGet, "/api/v1/menu/dishes?category_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPatch, idPath("/api/v1/admin/dishes", d.tiramisu.ID)+"/availability", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":`+strconv.Itoa(int(d.tiramisu.ID))+`,"available":true}`, w.Body.String())

	w = performRequest(router, http.MethodGet, idPath("/api/v1/menu/dishes", d.tiramisu.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tiramisu models.Dish
	decode(t, w, &tiramisu)
	assert.True(t, tiramisu.Available)
	require.NotNil(t, tiramisu.Category)
	assert.Equal(t, "Pasta", tiramisu.Category.Name)

	w = performRequest(router, http.MethodDelete, idPath("/api/v1/admin/dishes", gnocchi.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodGet, idPath("/api/v1/menu/dishes", gnocchi.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
