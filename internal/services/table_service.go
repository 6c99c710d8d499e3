package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TableService interface {
	// ListTables returns every table, or only those matching occupied when set
	ListTables(ctx context.Context, occupied *bool) ([]models.Table, error)
	GetTable(ctx context.Context, id uint) (*models.Table, error)
	CreateTable(ctx context.Context, number uint) (*models.Table, error)
	RenumberTable(ctx context.Context, id uint, number uint) (*models.Table, error)
	DeleteTable(ctx context.Context, id uint) error
	// ToggleOccupancy releases a table left occupied without an open order.
	// A table only becomes occupied through CreateOrder.
	ToggleOccupancy(ctx context.Context, id uint) (*models.Table, error)
}

type tableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) TableService {
	return &tableService{db: db}
}

func (s *tableService) ListTables(ctx context.Context, occupied *bool) ([]models.Table, error) {
	query := s.db.WithContext(ctx)
	if occupied != nil {
		query = query.Where("occupied = ?", *occupied)
	}

	var tables []models.Table
	if err := query.Order("number").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *tableService) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	return findTable(s.db.WithContext(ctx), id)
}

func (s *tableService) CreateTable(ctx context.Context, number uint) (*models.Table, error) {
	if number == 0 {
		return nil, ErrInvalidTableNumber
	}

	db := s.db.WithContext(ctx)
	if err := ensureUniqueTableNumber(db, number, 0); err != nil {
		return nil, err
	}

	table := models.Table{Number: number}
	if err := db.Create(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *tableService) RenumberTable(ctx context.Context, id uint, number uint) (*models.Table, error) {
	if number == 0 {
		return nil, ErrInvalidTableNumber
	}

	db := s.db.WithContext(ctx)
	table, err := findTable(db, id)
	if err != nil {
		return nil, err
	}
	if err := ensureUniqueTableNumber(db, number, id); err != nil {
		return nil, err
	}

	table.Number = number
	if err := db.Model(table).Update("number", number).Error; err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) DeleteTable(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := findTable(tx, id)
		if err != nil {
			return err
		}

		open, err := hasOpenOrder(tx, id)
		if err != nil {
			return err
		}
		if open {
			return ErrTableHasOpenOrder
		}

		// closed orders keep their history without the table
		if err := tx.Model(&models.Order{}).Where("table_id = ?", id).Update("table_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(table).Error
	})
}

func (s *tableService) ToggleOccupancy(ctx context.Context, id uint) (*models.Table, error) {
	var table *models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		table, err = findTable(tx, id)
		if err != nil {
			return err
		}

		open, err := hasOpenOrder(tx, id)
		if err != nil {
			return err
		}
		if open {
			return ErrTableHasOpenOrder
		}
		if !table.Occupied {
			return ErrTableNotOccupied
		}

		table.Occupied = false
		return tx.Model(table).Update("occupied", table.Occupied).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"table":    table.Number,
		"occupied": table.Occupied,
	}).Info("Table occupancy toggled")
	return table, nil
}

func findTable(db *gorm.DB, id uint) (*models.Table, error) {
	var table models.Table
	if err := db.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

func hasOpenOrder(db *gorm.DB, tableID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Order{}).
		Where("table_id = ? AND status <> ?", tableID, models.StatusClosed).
		Count(&count).Error
	return count > 0, err
}

func ensureUniqueTableNumber(db *gorm.DB, number uint, exceptID uint) error {
	var count int64
	if err := db.Model(&models.Table{}).Where("number = ? AND id <> ?", number, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateTableNumber
	}
	return nil
}
