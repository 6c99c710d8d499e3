package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/trattoria-api/internal/database"
	"github.com/franciscosanchezn/trattoria-api/internal/middleware"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterRules(); err != nil {
		panic(err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type testData struct {
	admin     models.User
	waiter    models.User
	other     models.User
	pasta     models.Category
	carbonara models.Dish
	tiramisu  models.Dish
	table     models.Table
}

func createUser(t *testing.T, db *gorm.DB, username, password, role string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Username: username, PasswordHash: string(hash)}
	require.NoError(t, db.Create(&user).Error)
	employee := models.Employee{UserID: user.ID, Role: role}
	require.NoError(t, db.Create(&employee).Error)
	user.Employee = &employee
	return user
}

func seedTestData(t *testing.T, db *gorm.DB) testData {
	var d testData
	d.admin = createUser(t, db, "admin", "admin123", models.RoleAdministrator)
	d.waiter = createUser(t, db, "dilan", "123456", models.RoleWaiter)
	d.other = createUser(t, db, "marco", "marco123", models.RoleWaiter)

	d.pasta = models.Category{Name: "Pasta"}
	require.NoError(t, db.Create(&d.pasta).Error)
	d.carbonara = models.Dish{Name: "Carbonara", Price: 12.50, Available: true, CategoryID: d.pasta.ID}
	d.tiramisu = models.Dish{Name: "Tiramisu", Price: 6.00, Available: false, CategoryID: d.pasta.ID}
	require.NoError(t, db.Create(&d.carbonara).Error)
	require.NoError(t, db.Create(&d.tiramisu).Error)

	d.table = models.Table{Number: 5}
	require.NoError(t, db.Create(&d.table).Error)
	return d
}

// asUser stands in for BearerAuth in handler tests
func asUser(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, user.ID)
		c.Set(middleware.ContextUserRole, user.Role())
		c.Next()
	}
}

func performRequest(router http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr models.APIError
	decode(t, w, &apiErr)
	return apiErr.Code
}
