package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/auth"
	"github.com/franciscosanchezn/trattoria-api/internal/middleware"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

func setupAuthRouter(db *gorm.DB) *gin.Engine {
	revocations := auth.NewMemoryRevocationStore()
	users := services.NewUserService(db)
	controller := NewAuthController(
		users,
		auth.NewSessionIssuer(testSecret, time.Hour),
		revocations,
	)

	router := gin.New()
	router.POST("/api/v1/auth/login", controller.Login)
	bearer := middleware.BearerAuth([]byte(testSecret), revocations, users)
	authed := router.Group("/api/v1/auth", bearer)
	authed.POST("/logout", controller.Logout)
	authed.GET("/me", controller.Me)
	router.GET("/api/v1/admin/ping", bearer, middleware.RequireRole(models.RoleAdministrator), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	Role        string      `json:"role"`
	RedirectTo  string      `json:"redirect_to"`
	User        models.User `json:"user"`
}

func login(t *testing.T, router *gin.Engine, username, password string) loginResponse {
	t.Helper()
	w := performRequest(router, http.MethodPost, "/api/v1/auth/login", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp loginResponse
	decode(t, w, &resp)
	return resp
}

func TestLoginRedirectsByRole(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)
	router := setupAuthRouter(db)

	admin := login(t, router, "admin", "admin123")
	assert.Equal(t, "Bearer", admin.TokenType)
	assert.Equal(t, 3600, admin.ExpiresIn)
	assert.Equal(t, models.RoleAdministrator, admin.Role)
	assert.Equal(t, "/api/v1/admin/dashboard", admin.RedirectTo)
	assert.NotEmpty(t, admin.AccessToken)

	waiter := login(t, router, "dilan", "123456")
	assert.Equal(t, models.RoleWaiter, waiter.Role)
	assert.Equal(t, "/api/v1/orders/mine", waiter.RedirectTo)
	assert.Equal(t, "dilan", waiter.User.Username)
}

func TestLoginFailures(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)
	router := setupAuthRouter(db)

	w := performRequest(router, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "dilan", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.ErrInvalidCredentials, errorCode(t, w))

	w = performRequest(router, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "ghost", "password": "123456"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "dilan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrValidationFailed, errorCode(t, w))
}

func TestMeAndLogout(t *testing.T) {
	db := setupTestDB(t)
	seedTestData(t, db)
	router := setupAuthRouter(db)

	session := login(t, router, "dilan", "123456")
	bearer := "Bearer " + session.AccessToken

	w := performRequest(router, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "dilan", me.Username)
	require.NotNil(t, me.Employee)
	assert.Equal(t, models.RoleWaiter, me.Employee.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = performRequest(router, http.MethodPost, "/api/v1/auth/logout", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")

	// a fresh login still works
	again := login(t, router, "dilan", "123456")
	w = performRequest(router, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+again.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokensFollowEmployeeChanges(t *testing.T) {
	db := setupTestDB(t)
	d := seedTestData(t, db)
	router := setupAuthRouter(db)
	employees := services.NewEmployeeService(db)
	ctx := context.Background()

	admin := login(t, router, "admin", "admin123")
	adminBearer := "Bearer " + admin.AccessToken
	w := performRequest(router, http.MethodGet, "/api/v1/admin/ping", nil, "Authorization", adminBearer)
	require.Equal(t, http.StatusNoContent, w.Code)

	demoted := models.RoleWaiter
	_, err := employees.UpdateEmployee(ctx, d.admin.Employee.ID, services.EmployeeUpdate{Role: &demoted})
	require.NoError(t, err)

	w = performRequest(router, http.MethodGet, "/api/v1/admin/ping", nil, "Authorization", adminBearer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	waiter := login(t, router, "dilan", "123456")
	require.NoError(t, employees.DeleteEmployee(ctx, d.waiter.Employee.ID))

	w = performRequest(router, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+waiter.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no longer active")
}
