package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", pg.DSN())

	pg.URL = "postgres://u:p@db:5432/n"
	assert.Equal(t, "postgres://u:p@db:5432/n", pg.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Path: "trattoria.sqlite"}
	assert.Equal(t, "trattoria.sqlite?_foreign_keys=on", lite.DSN())

	assert.NotContains(t, pg.String(), "password=p")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDefaultSeed(t *testing.T) {
	data, err := DefaultSeed()
	require.NoError(t, err)

	db := setupTestDB(t)
	require.NoError(t, Seed(db, data))

	var users, tables, dishes int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Table{}).Count(&tables)
	db.Model(&models.Dish{}).Count(&dishes)
	assert.Equal(t, int64(len(data.Employees)), users)
	assert.Equal(t, int64(len(data.Tables)), tables)
	assert.Equal(t, int64(6), dishes)

	var pannaCotta models.Dish
	require.NoError(t, db.Where("name = ?", "Panna cotta").First(&pannaCotta).Error)
	assert.False(t, pannaCotta.Available)

	var admin models.User
	require.NoError(t, db.Preload("Employee").Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.RoleAdministrator, admin.Role())
	assert.True(t, admin.CheckPassword("admin123"))

	// A second run leaves the data untouched
	require.NoError(t, Seed(db, data))
	db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(len(data.Employees)), users)
}

func TestParseSeedRejectsInvalidData(t *testing.T) {
	_, err := ParseSeed([]byte("employees:\n  - username: bob\n    password: x\n    role: chef\n"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("categories:\n  - name: Pasta\n    dishes:\n      - name: Free\n        price: -1\n"))
	assert.Error(t, err)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables: [10, 11]\n"), 0o600))

	data, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11}, data.Tables)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
