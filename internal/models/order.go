package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. An order moves forward through them and never back.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

var statusRank = map[string]int{
	StatusWaiting:    0,
	StatusInProgress: 1,
	StatusClosed:     2,
}

// Order is a waiter's tab for one table
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	TableID   *uint       `gorm:"index" json:"table_id"`
	Table     *Table      `gorm:"constraint:OnDelete:SET NULL" json:"table,omitempty"`
	WaiterID  *uint       `gorm:"index" json:"waiter_id"`
	Waiter    *User       `gorm:"foreignKey:WaiterID;constraint:OnDelete:SET NULL" json:"waiter,omitempty"`
	Status    string      `gorm:"size:20;not null;index" json:"status"`
	Total     float64     `gorm:"type:decimal(10,2);not null" json:"total"`
	Lines     []OrderLine `gorm:"constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	ClosedAt  *time.Time  `json:"closed_at,omitempty"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsOpen reports whether the order still holds its table
func (o *Order) IsOpen() bool {
	return o.Status != StatusClosed
}

// IsValidStatus reports whether status is a known order status
func IsValidStatus(status string) bool {
	_, ok := statusRank[status]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
// Only forward moves are allowed and a closed order is final.
func CanTransition(from, to string) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// RecalculateTotal sums the subtotals of every line of the order and persists
// the result as the order total.
func (o *Order) RecalculateTotal(tx *gorm.DB) error {
	var subtotals []float64
	if err := tx.Model(&OrderLine{}).Where("order_id = ?", o.ID).Pluck("subtotal", &subtotals).Error; err != nil {
		return err
	}

	var total float64
	for _, subtotal := range subtotals {
		total += subtotal
	}
	o.Total = RoundMoney(total)

	return tx.Model(&Order{}).Where("id = ?", o.ID).Update("total", o.Total).Error
}
