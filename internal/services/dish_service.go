package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DishFilter narrows ListDishes. Zero values disable a filter.
type DishFilter struct {
	CategoryID    uint
	AvailableOnly bool
}

// DishInput describes a new dish. Available defaults to true when nil.
type DishInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  uint
	Available   *bool
	ImageURL    string
}

// DishUpdate lists the fields to change; nil fields are left untouched
type DishUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	CategoryID  *uint
	Available   *bool
	ImageURL    *string
}

type DishService interface {
	ListDishes(ctx context.Context, filter DishFilter) ([]models.Dish, error)
	GetDish(ctx context.Context, id uint) (*models.Dish, error)
	CreateDish(ctx context.Context, input DishInput) (*models.Dish, error)
	UpdateDish(ctx context.Context, id uint, update DishUpdate) (*models.Dish, error)
	// DeleteDish refuses to remove a dish that appears on any order line
	DeleteDish(ctx context.Context, id uint) error
	ToggleAvailability(ctx context.Context, id uint) (*models.Dish, error)
}

type dishService struct {
	db *gorm.DB
}

func NewDishService(db *gorm.DB) DishService {
	return &dishService{db: db}
}

func (s *dishService) ListDishes(ctx context.Context, filter DishFilter) ([]models.Dish, error) {
	query := s.db.WithContext(ctx).Preload("Category")
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AvailableOnly {
		query = query.Where("available = ?", true)
	}

	var dishes []models.Dish
	if err := query.Order("category_id").Order("name").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func (s *dishService) GetDish(ctx context.Context, id uint) (*models.Dish, error) {
	return findDish(s.db.WithContext(ctx).Preload("Category"), id)
}

func (s *dishService) CreateDish(ctx context.Context, input DishInput) (*models.Dish, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if input.Price < 0 {
		return nil, ErrInvalidPrice
	}

	db := s.db.WithContext(ctx)
	if err := ensureCategoryExists(db, input.CategoryID); err != nil {
		return nil, err
	}

	dish := models.Dish{
		Name:        name,
		Description: input.Description,
		Price:       models.RoundMoney(input.Price),
		CategoryID:  input.CategoryID,
		Available:   input.Available == nil || *input.Available,
		ImageURL:    input.ImageURL,
	}
	if err := db.Create(&dish).Error; err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"dish_id": dish.ID,
		"name":    dish.Name,
		"price":   dish.Price,
	}).Info("Dish created")

	return s.GetDish(ctx, dish.ID)
}

func (s *dishService) UpdateDish(ctx context.Context, id uint, update DishUpdate) (*models.Dish, error) {
	db := s.db.WithContext(ctx)
	dish, err := findDish(db, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		dish.Name = name
	}
	if update.Description != nil {
		dish.Description = *update.Description
	}
	if update.Price != nil {
		if *update.Price < 0 {
			return nil, ErrInvalidPrice
		}
		dish.Price = models.RoundMoney(*update.Price)
	}
	if update.CategoryID != nil {
		if err := ensureCategoryExists(db, *update.CategoryID); err != nil {
			return nil, err
		}
		dish.CategoryID = *update.CategoryID
	}
	if update.Available != nil {
		dish.Available = *update.Available
	}
	if update.ImageURL != nil {
		dish.ImageURL = *update.ImageURL
	}

	if err := db.Save(dish).Error; err != nil {
		return nil, err
	}
	return s.GetDish(ctx, id)
}

func (s *dishService) DeleteDish(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dish, err := findDish(tx, id)
		if err != nil {
			return err
		}

		var lines int64
		if err := tx.Model(&models.OrderLine{}).Where("dish_id = ?", id).Count(&lines).Error; err != nil {
			return err
		}
		if lines > 0 {
			return ErrDishInUse
		}

		return tx.Delete(dish).Error
	})
}

func (s *dishService) ToggleAvailability(ctx context.Context, id uint) (*models.Dish, error) {
	db := s.db.WithContext(ctx)
	dish, err := findDish(db, id)
	if err != nil {
		return nil, err
	}

	dish.Available = !dish.Available
	if err := db.Model(dish).Update("available", dish.Available).Error; err != nil {
		return nil, err
	}
	return dish, nil
}

func findDish(db *gorm.DB, id uint) (*models.Dish, error) {
	var dish models.Dish
	if err := db.First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return &dish, nil
}

func ensureCategoryExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
