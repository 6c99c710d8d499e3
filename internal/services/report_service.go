package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	ordersSheet = "Orders"
	linesSheet  = "Lines"
)

var (
	orderHeaders = []interface{}{"Order", "Table", "Waiter", "Status", "Total", "Opened", "Closed"}
	lineHeaders  = []interface{}{"Order", "Line", "Dish", "Quantity", "Unit price", "Subtotal"}
)

type ReportService interface {
	// WriteOrdersReport writes an xlsx workbook of the orders closed in
	// [from, to) and returns how many orders it contains.
	WriteOrdersReport(ctx context.Context, w io.Writer, from, to time.Time) (int, error)
}

type reportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

func (s *reportService) WriteOrdersReport(ctx context.Context, w io.Writer, from, to time.Time) (int, error) {
	if !to.After(from) {
		return 0, fmt.Errorf("%w: report range end must be after its start", ErrValidation)
	}

	var orders []models.Order
	err := withOrderDetails(s.db.WithContext(ctx)).
		Where("status = ? AND closed_at >= ? AND closed_at < ?", models.StatusClosed, from.UTC(), to.UTC()).
		Order("closed_at").
		Find(&orders).Error
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("Failed to close report workbook")
		}
	}()

	if err := buildOrdersWorkbook(f, orders); err != nil {
		return 0, err
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("writing report: %w", err)
	}
	return len(orders), nil
}

func buildOrdersWorkbook(f *excelize.File, orders []models.Order) error {
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeaders); err != nil {
		return err
	}
	if err := f.SetSheetRow(linesSheet, "A1", &lineHeaders); err != nil {
		return err
	}

	lineRow := 2
	for i, order := range orders {
		row := []interface{}{order.ID, tableNumber(order), waiterName(order), order.Status, order.Total, order.CreatedAt.UTC().Format(time.RFC3339), ""}
		if order.ClosedAt != nil {
			row[6] = order.ClosedAt.UTC().Format(time.RFC3339)
		}
		if err := f.SetSheetRow(ordersSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}

		for _, line := range order.Lines {
			dish, price := "", 0.0
			if line.Dish != nil {
				dish, price = line.Dish.Name, line.Dish.Price
			}
			cells := []interface{}{order.ID, line.ID, dish, line.Quantity, price, line.Subtotal}
			if err := f.SetSheetRow(linesSheet, fmt.Sprintf("A%d", lineRow), &cells); err != nil {
				return err
			}
			lineRow++
		}
	}

	totalRow := len(orders) + 2
	if err := f.SetCellValue(ordersSheet, fmt.Sprintf("D%d", totalRow), "TOTAL"); err != nil {
		return err
	}
	if len(orders) > 0 {
		return f.SetCellFormula(ordersSheet, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("SUM(E2:E%d)", totalRow-1))
	}
	return f.SetCellValue(ordersSheet, fmt.Sprintf("E%d", totalRow), 0)
}

func tableNumber(order models.Order) interface{} {
	if order.Table == nil {
		return ""
	}
	return order.Table.Number
}

func waiterName(order models.Order) string {
	if order.Waiter == nil {
		return ""
	}
	return order.Waiter.Username
}
