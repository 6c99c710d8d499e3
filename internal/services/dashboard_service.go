package services

import (
	"context"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"gorm.io/gorm"
)

// Dashboard is the administrator's overview of the dining room
type Dashboard struct {
	Employees       int64   `json:"employees"`
	Waiters         int64   `json:"waiters"`
	Categories      int64   `json:"categories"`
	Dishes          int64   `json:"dishes"`
	AvailableDishes int64   `json:"available_dishes"`
	Tables          int64   `json:"tables"`
	OccupiedTables  int64   `json:"occupied_tables"`
	OpenOrders      int64   `json:"open_orders"`
	ClosedToday     int64   `json:"closed_today"`
	RevenueToday    float64 `json:"revenue_today"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

type dashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db, now: time.Now}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	var d Dashboard

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&d.Employees, db.Model(&models.Employee{})},
		{&d.Waiters, db.Model(&models.Employee{}).Where("role = ?", models.RoleWaiter)},
		{&d.Categories, db.Model(&models.Category{})},
		{&d.Dishes, db.Model(&models.Dish{})},
		{&d.AvailableDishes, db.Model(&models.Dish{}).Where("available = ?", true)},
		{&d.Tables, db.Model(&models.Table{})},
		{&d.OccupiedTables, db.Model(&models.Table{}).Where("occupied = ?", true)},
		{&d.OpenOrders, db.Model(&models.Order{}).Where("status <> ?", models.StatusClosed)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	start, end := dayBounds(s.now())
	var totals []float64
	err := db.Model(&models.Order{}).
		Where("status = ? AND closed_at >= ? AND closed_at < ?", models.StatusClosed, start, end).
		Pluck("total", &totals).Error
	if err != nil {
		return nil, err
	}

	var revenue float64
	for _, total := range totals {
		revenue += total
	}
	d.ClosedToday = int64(len(totals))
	d.RevenueToday = models.RoundMoney(revenue)
	return &d, nil
}

// dayBounds returns the UTC start of the day containing t and the start of
// the following day.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
