package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/franciscosanchezn/trattoria-api/internal/database"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// setupMockDB runs gorm's postgres dialector on top of sqlmock
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

type fixture struct {
	admin     models.User
	waiter    models.User
	other     models.User
	pasta     models.Category
	carbonara models.Dish
	lasagna   models.Dish
	tiramisu  models.Dish
	table1    models.Table
	table2    models.Table
}

func createUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(username+"-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Username: username, PasswordHash: string(hash)}
	require.NoError(t, db.Create(&user).Error)
	employee := models.Employee{UserID: user.ID, Role: role}
	require.NoError(t, db.Create(&employee).Error)
	user.Employee = &employee
	return user
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	var f fixture
	f.admin = createUser(t, db, "admin", models.RoleAdministrator)
	f.waiter = createUser(t, db, "dilan", models.RoleWaiter)
	f.other = createUser(t, db, "marco", models.RoleWaiter)

	f.pasta = models.Category{Name: "Pasta"}
	require.NoError(t, db.Create(&f.pasta).Error)
	dolci := models.Category{Name: "Dolci"}
	require.NoError(t, db.Create(&dolci).Error)

	f.carbonara = models.Dish{Name: "Carbonara", Price: 12.50, Available: true, CategoryID: f.pasta.ID}
	f.lasagna = models.Dish{Name: "Lasagna", Price: 9.99, Available: true, CategoryID: f.pasta.ID}
	f.tiramisu = models.Dish{Name: "Tiramisu", Price: 6.00, Available: false, CategoryID: dolci.ID}
	for _, dish := range []*models.Dish{&f.carbonara, &f.lasagna, &f.tiramisu} {
		require.NoError(t, db.Create(dish).Error)
	}

	f.table1 = models.Table{Number: 1}
	f.table2 = models.Table{Number: 2}
	require.NoError(t, db.Create(&f.table1).Error)
	require.NoError(t, db.Create(&f.table2).Error)
	return f
}

func actorFor(user models.User) Actor {
	return Actor{UserID: user.ID, Role: user.Role()}
}

func ptr[T any](v T) *T {
	return &v
}
