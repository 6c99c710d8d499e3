package database

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// SeedData describes the initial content of an empty database
type SeedData struct {
	Employees  []SeedEmployee `yaml:"employees"`
	Categories []SeedCategory `yaml:"categories"`
	Tables     []uint         `yaml:"tables"`
}

type SeedEmployee struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Role      string `yaml:"role"`
	Phone     string `yaml:"phone"`
}

type SeedCategory struct {
	Name   string     `yaml:"name"`
	Dishes []SeedDish `yaml:"dishes"`
}

type SeedDish struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Available   *bool   `yaml:"available"` // defaults to true
	Image       string  `yaml:"image"`
}

// ParseSeed decodes and validates YAML seed data
func ParseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("cannot unmarshal seed data: %w", err)
	}

	for _, employee := range data.Employees {
		if employee.Username == "" || employee.Password == "" {
			return nil, fmt.Errorf("seed employee needs username and password")
		}
		if !models.IsValidRole(employee.Role) {
			return nil, fmt.Errorf("seed employee %s has invalid role %q", employee.Username, employee.Role)
		}
	}
	for _, category := range data.Categories {
		for _, dish := range category.Dishes {
			if dish.Price < 0 {
				return nil, fmt.Errorf("seed dish %s has a negative price", dish.Name)
			}
		}
	}
	return &data, nil
}

// LoadSeedFile reads seed data from a YAML file
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(raw)
}

// DefaultSeed returns the seed data bundled with the binary
func DefaultSeed() (*SeedData, error) {
	return ParseSeed(defaultSeed)
}

// Seed loads data into the database when it has no users yet
func Seed(db *gorm.DB, data *SeedData) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return nil
	}

	log.WithFields(logrus.Fields{
		"employees":  len(data.Employees),
		"categories": len(data.Categories),
		"tables":     len(data.Tables),
	}).Info("Database is empty, seeding initial data")

	return db.Transaction(func(tx *gorm.DB) error {
		for _, e := range data.Employees {
			user := models.User{
				Username:  e.Username,
				Email:     e.Email,
				FirstName: e.FirstName,
				LastName:  e.LastName,
				Employee: &models.Employee{
					Role:     e.Role,
					Phone:    e.Phone,
					HireDate: datatypes.Date(time.Now()),
				},
			}
			if err := user.SetPassword(e.Password); err != nil {
				return err
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("seeding employee %s: %w", e.Username, err)
			}
		}

		for _, c := range data.Categories {
			category := models.Category{Name: c.Name}
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("seeding category %s: %w", c.Name, err)
			}
			for _, d := range c.Dishes {
				available := true
				if d.Available != nil {
					available = *d.Available
				}
				dish := models.Dish{
					Name:        d.Name,
					Description: d.Description,
					Price:       models.RoundMoney(d.Price),
					Available:   available,
					CategoryID:  category.ID,
					ImageURL:    d.Image,
				}
				if err := tx.Create(&dish).Error; err != nil {
					return fmt.Errorf("seeding dish %s: %w", d.Name, err)
				}
			}
		}

		for _, number := range data.Tables {
			if err := tx.Create(&models.Table{Number: number}).Error; err != nil {
				return fmt.Errorf("seeding table %d: %w", number, err)
			}
		}
		log.Info("Database seeded successfully")
		return nil
	})
}
