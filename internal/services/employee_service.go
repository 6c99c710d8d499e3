package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewEmployee carries the data needed to hire someone
type NewEmployee struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Role      string
	Phone     string
}

// EmployeeUpdate lists the fields to change; nil fields are left untouched
type EmployeeUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *string
	Phone     *string
	Password  *string
}

type EmployeeService interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	CreateEmployee(ctx context.Context, input NewEmployee) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, id uint, update EmployeeUpdate) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id uint) error
}

type employeeService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEmployeeService(db *gorm.DB) EmployeeService {
	return &employeeService{db: db, now: time.Now}
}

func (s *employeeService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.WithContext(ctx).Preload("User").Order("id").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	return findEmployee(s.db.WithContext(ctx), id)
}

func (s *employeeService) CreateEmployee(ctx context.Context, input NewEmployee) (*models.Employee, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}
	if !models.IsValidRole(input.Role) {
		return nil, ErrInvalidRole
	}

	user := models.User{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	var employee models.Employee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateUsername
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		employee = models.Employee{
			UserID:   user.ID,
			Role:     input.Role,
			Phone:    input.Phone,
			HireDate: datatypes.Date(s.now()),
		}
		return tx.Create(&employee).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"employee_id": employee.ID,
		"username":    user.Username,
		"role":        employee.Role,
	}).Info("Employee created")

	employee.User = &user
	return &employee, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, id uint, update EmployeeUpdate) (*models.Employee, error) {
	if update.Role != nil && !models.IsValidRole(*update.Role) {
		return nil, ErrInvalidRole
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		employee, err := findEmployee(tx, id)
		if err != nil {
			return err
		}

		user := employee.User
		if update.Email != nil {
			user.Email = *update.Email
		}
		if update.FirstName != nil {
			user.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			user.LastName = *update.LastName
		}
		if update.Password != nil && *update.Password != "" {
			if err := user.SetPassword(*update.Password); err != nil {
				return err
			}
		}
		if err := tx.Model(user).Select("email", "first_name", "last_name", "password_hash").Updates(user).Error; err != nil {
			return err
		}

		if update.Role != nil {
			employee.Role = *update.Role
		}
		if update.Phone != nil {
			employee.Phone = *update.Phone
		}
		return tx.Model(employee).Select("role", "phone").Updates(employee).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetEmployee(ctx, id)
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee models.Employee
		if err := tx.First(&employee, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		// orders outlive the waiter who took them
		if err := tx.Model(&models.Order{}).Where("waiter_id = ?", employee.UserID).Update("waiter_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&employee).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, employee.UserID).Error; err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"employee_id": employee.ID,
			"user_id":     employee.UserID,
		}).Info("Employee deleted")
		return nil
	})
}

func findEmployee(db *gorm.DB, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := db.Preload("User").First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}
