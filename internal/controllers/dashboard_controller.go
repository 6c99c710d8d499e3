package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout      = "2006-01-02"
)

// DashboardController serves the administrator overview and reports
type DashboardController struct {
	dashboard services.DashboardService
	reports   services.ReportService
	now       func() time.Time
}

func NewDashboardController(dashboard services.DashboardService, reports services.ReportService) *DashboardController {
	return &DashboardController{dashboard: dashboard, reports: reports, now: time.Now}
}

// GetDashboard godoc
// @Summary Administrator dashboard
// @Description Staff, menu and table counts, open orders and today's revenue
// @Tags admin
// @Produce json
// @Success 200 {object} services.Dashboard
// @Security BearerAuth
// @Router /api/v1/admin/dashboard [get]
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	dashboard, err := dc.dashboard.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// OrdersReport godoc
// @Summary Closed orders report
// @Description Excel workbook of the orders closed between from and to (inclusive dates, UTC). Both default to today.
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/reports/orders.xlsx [get]
func (dc *DashboardController) OrdersReport(c *gin.Context) {
	today := dc.now().UTC().Format(dateLayout)

	from, err := time.Parse(dateLayout, c.DefaultQuery("from", today))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse(dateLayout, c.DefaultQuery("to", today))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid to date, expected YYYY-MM-DD"))
		return
	}

	var buf bytes.Buffer
	count, err := dc.reports.WriteOrdersReport(c.Request.Context(), &buf, from, to.AddDate(0, 0, 1))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("orders_%s_%s.xlsx", from.Format(dateLayout), to.Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Report-Orders", strconv.Itoa(count))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
