package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CategorySummary is a category with the number of dishes filed under it
type CategorySummary struct {
	models.Category
	DishCount int64 `json:"dish_count"`
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]CategorySummary, error)
	// GetCategory returns the category with its dishes
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	RenameCategory(ctx context.Context, id uint, name string) (*models.Category, error)
	// DeleteCategory refuses to remove a category that still has dishes
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) CategoryService {
	return &categoryService{db: db}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	db := s.db.WithContext(ctx)

	var categories []models.Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		CategoryID uint
		Total      int64
	}
	if err := db.Model(&models.Dish{}).Select("category_id, count(*) as total").Group("category_id").Scan(&counts).Error; err != nil {
		return nil, err
	}
	byCategory := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byCategory[c.CategoryID] = c.Total
	}

	summaries := make([]CategorySummary, 0, len(categories))
	for _, category := range categories {
		summaries = append(summaries, CategorySummary{Category: category, DishCount: byCategory[category.ID]})
	}
	return summaries, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Preload("Dishes", func(db *gorm.DB) *gorm.DB {
		return db.Order("name")
	}).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	db := s.db.WithContext(ctx)
	if err := ensureUniqueCategoryName(db, name, 0); err != nil {
		return nil, err
	}

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *categoryService) RenameCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	db := s.db.WithContext(ctx)
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := ensureUniqueCategoryName(db, name, id); err != nil {
		return nil, err
	}

	category.Name = name
	if err := db.Model(&category).Update("name", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		var dishes int64
		if err := tx.Model(&models.Dish{}).Where("category_id = ?", id).Count(&dishes).Error; err != nil {
			return err
		}
		if dishes > 0 {
			log.WithFields(log.Fields{
				"category_id": id,
				"dishes":      dishes,
			}).Debug("Refusing to delete category with dishes")
			return ErrCategoryHasDishes
		}

		return tx.Delete(&category).Error
	})
}

func ensureUniqueCategoryName(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateCategoryName
	}
	return nil
}
