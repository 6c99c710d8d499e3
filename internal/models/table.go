package models

import "time"

// Table is a physical table in the dining room
type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    uint      `gorm:"uniqueIndex;not null" json:"number"`
	Occupied  bool      `gorm:"not null" json:"occupied"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Table) TableName() string {
	return "dining_tables"
}
