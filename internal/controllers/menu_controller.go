package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
)

// MenuController serves categories and dishes
type MenuController struct {
	categories services.CategoryService
	dishes     services.DishService
}

func NewMenuController(categories services.CategoryService, dishes services.DishService) *MenuController {
	return &MenuController{categories: categories, dishes: dishes}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

type createDishRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Available   *bool   `json:"available"`
	ImageURL    string  `json:"image_url"`
}

type updateDishRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	CategoryID  *uint    `json:"category_id"`
	Available   *bool    `json:"available"`
	ImageURL    *string  `json:"image_url"`
}

// ListCategories godoc
// @Summary List categories
// @Description Categories ordered by name with the number of dishes in each
// @Tags menu
// @Produce json
// @Success 200 {array} services.CategorySummary
// @Security BearerAuth
// @Router /api/v1/menu/categories [get]
func (mc *MenuController) ListCategories(c *gin.Context) {
	categories, err := mc.categories.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory godoc
// @Summary Get category
// @Tags menu
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/menu/categories/{id} [get]
func (mc *MenuController) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := mc.categories.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory godoc
// @Summary Create category
// @Tags menu
// @Accept json
// @Produce json
// @Param category body categoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/categories [post]
func (mc *MenuController) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := mc.categories.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory godoc
// @Summary Rename category
// @Tags menu
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body categoryRequest true "Category"
// @Success 200 {object} models.Category
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/categories/{id} [put]
func (mc *MenuController) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := mc.categories.RenameCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete category
// @Description Only categories without dishes can be deleted
// @Tags menu
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/categories/{id} [delete]
func (mc *MenuController) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := mc.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDishes godoc
// @Summary List dishes
// @Tags menu
// @Produce json
// @Param category_id query int false "Only dishes of this category"
// @Param available query bool false "Only dishes that can be ordered"
// @Success 200 {array} models.Dish
// @Security BearerAuth
// @Router /api/v1/menu/dishes [get]
func (mc *MenuController) ListDishes(c *gin.Context) {
	categoryID, ok := queryUint(c, "category_id")
	if !ok {
		return
	}
	available, ok := queryBool(c, "available")
	if !ok {
		return
	}

	dishes, err := mc.dishes.ListDishes(c.Request.Context(), services.DishFilter{
		CategoryID:    categoryID,
		AvailableOnly: available != nil && *available,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

// GetDish godoc
// @Summary Get dish
// @Tags menu
// @Produce json
// @Param id path int true "Dish ID"
// @Success 200 {object} models.Dish
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/menu/dishes/{id} [get]
func (mc *MenuController) GetDish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dish, err := mc.dishes.GetDish(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

// CreateDish godoc
// @Summary Create dish
// @Tags menu
// @Accept json
// @Produce json
// @Param dish body createDishRequest true "Dish"
// @Success 201 {object} models.Dish
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/dishes [post]
func (mc *MenuController) CreateDish(c *gin.Context) {
	var req createDishRequest
	if !bindJSON(c, &req) {
		return
	}
	dish, err := mc.dishes.CreateDish(c.Request.Context(), services.DishInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Available:   req.Available,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

// UpdateDish godoc
// @Summary Update dish
// @Description Change any subset of the dish fields
// @Tags menu
// @Accept json
// @Produce json
// @Param id path int true "Dish ID"
// @Param dish body updateDishRequest true "Fields to change"
// @Success 200 {object} models.Dish
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/dishes/{id} [put]
func (mc *MenuController) UpdateDish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateDishRequest
	if !bindJSON(c, &req) {
		return
	}
	dish, err := mc.dishes.UpdateDish(c.Request.Context(), id, services.DishUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Available:   req.Available,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

// DeleteDish godoc
// @Summary Delete dish
// @Description Dishes that appear on an order cannot be deleted
// @Tags menu
// @Param id path int true "Dish ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/dishes/{id} [delete]
func (mc *MenuController) DeleteDish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := mc.dishes.DeleteDish(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleDishAvailability godoc
// @Summary Toggle dish availability
// @Tags menu
// @Produce json
// @Param id path int true "Dish ID"
// @Success 200 {object} models.Dish
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/dishes/{id}/availability [patch]
func (mc *MenuController) ToggleDishAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dish, err := mc.dishes.ToggleAvailability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": dish.ID, "available": dish.Available})
}
