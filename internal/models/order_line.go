package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidQuantity is returned when a line is saved with a zero quantity
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// OrderLine is a (dish, quantity) pair within an order
type OrderLine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	DishID    uint      `gorm:"not null;index" json:"dish_id"`
	Dish      *Dish     `gorm:"constraint:OnDelete:RESTRICT" json:"dish,omitempty"`
	Quantity  uint      `gorm:"not null" json:"quantity"`
	Subtotal  float64   `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave prices the line from the current dish price
func (l *OrderLine) BeforeSave(tx *gorm.DB) error {
	if l.Quantity == 0 {
		return ErrInvalidQuantity
	}

	var dish Dish
	if err := tx.Select("id", "price").First(&dish, l.DishID).Error; err != nil {
		return fmt.Errorf("pricing dish %d: %w", l.DishID, err)
	}
	l.Subtotal = RoundMoney(dish.Price * float64(l.Quantity))
	return nil
}

// AfterSave keeps the parent order total in sync
func (l *OrderLine) AfterSave(tx *gorm.DB) error {
	order := Order{ID: l.OrderID}
	return order.RecalculateTotal(tx)
}

// AfterDelete keeps the parent order total in sync
func (l *OrderLine) AfterDelete(tx *gorm.DB) error {
	order := Order{ID: l.OrderID}
	return order.RecalculateTotal(tx)
}
