package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/trattoria-api/internal/middleware"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/franciscosanchezn/trattoria-api/internal/validation"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Checked in order, so specific errors come before the class they wrap.
var errorMappings = []errorMapping{
	{services.ErrEmployeeNotFound, http.StatusNotFound, models.ErrEmployeeNotFound},
	{services.ErrUserNotFound, http.StatusNotFound, models.ErrEmployeeNotFound},
	{services.ErrCategoryNotFound, http.StatusNotFound, models.ErrCategoryNotFound},
	{services.ErrDishNotFound, http.StatusNotFound, models.ErrDishNotFound},
	{services.ErrTableNotFound, http.StatusNotFound, models.ErrTableNotFound},
	{services.ErrOrderNotFound, http.StatusNotFound, models.ErrOrderNotFound},
	{services.ErrOrderLineNotFound, http.StatusNotFound, models.ErrOrderLineNotFound},
	{services.ErrNotFound, http.StatusNotFound, models.ErrNotFound},

	{services.ErrDuplicateUsername, http.StatusConflict, models.ErrEmployeeDuplicate},
	{services.ErrDuplicateCategoryName, http.StatusConflict, models.ErrCategoryDuplicateName},
	{services.ErrCategoryHasDishes, http.StatusConflict, models.ErrCategoryHasDishes},
	{services.ErrDishInUse, http.StatusConflict, models.ErrDishInUse},
	{services.ErrDishUnavailable, http.StatusConflict, models.ErrDishUnavailable},
	{services.ErrDuplicateTableNumber, http.StatusConflict, models.ErrTableDuplicateNumber},
	{services.ErrTableOccupied, http.StatusConflict, models.ErrTableOccupied},
	{services.ErrTableHasOpenOrder, http.StatusConflict, models.ErrTableHasOpenOrder},
	{services.ErrTableNotOccupied, http.StatusConflict, models.ErrTableNotOccupied},
	{services.ErrOrderClosed, http.StatusConflict, models.ErrOrderClosed},
	{services.ErrInvalidTransition, http.StatusConflict, models.ErrOrderInvalidStatus},
	{services.ErrConflict, http.StatusConflict, models.ErrConflict},

	{services.ErrMissingTable, http.StatusBadRequest, models.ErrOrderMissingTable},
	{services.ErrMissingDishes, http.StatusBadRequest, models.ErrOrderMissingDishes},
	{services.ErrInvalidQuantity, http.StatusBadRequest, models.ErrOrderInvalidQuantity},
	{models.ErrInvalidQuantity, http.StatusBadRequest, models.ErrOrderInvalidQuantity},
	{services.ErrInvalidStatus, http.StatusBadRequest, models.ErrOrderInvalidStatus},
	{services.ErrInvalidRole, http.StatusBadRequest, models.ErrEmployeeInvalidRole},
	{services.ErrValidation, http.StatusBadRequest, models.ErrValidationFailed},

	{services.ErrForbidden, http.StatusForbidden, models.ErrForbidden},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, models.ErrInvalidCredentials},
}

// respondError writes the API error matching err. Anything unknown is logged
// and reported as a 500 without leaking the cause.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, models.NewAPIError(m.code, err.Error()))
			return
		}
	}

	log.WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"error":  err,
	}).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
}

// bindJSON binds the request body and answers 400 with per-field details
// when it does not validate.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		details := validation.FieldErrors(err)
		message := "Invalid request body"
		if details == nil {
			details = map[string]interface{}{"body": err.Error()}
		}
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, message, details))
		return false
	}
	return true
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" format",
			map[string]interface{}{name: c.Param(name)}))
		return 0, false
	}
	return uint(id), true
}

// queryUint parses an optional numeric query parameter; zero when absent
func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" query parameter",
			map[string]interface{}{name: raw}))
		return 0, false
	}
	return uint(v), true
}

// queryBool parses an optional boolean query parameter; nil when absent
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" query parameter",
			map[string]interface{}{name: raw}))
		return nil, false
	}
	return &v, true
}

func currentActor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: c.GetUint(middleware.ContextUserID),
		Role:   c.GetString(middleware.ContextUserRole),
	}
}
