package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"gorm.io/gorm"
)

type UserService interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// Authenticate returns the user with its employee record when the
	// password matches, ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	// CurrentRole reports the role the user holds right now. active is false
	// once the employee record is gone.
	CurrentRole(ctx context.Context, userID uint) (role string, active bool, err error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Employee").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Employee").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// accounts without an employee record cannot sign in
	if !user.CheckPassword(password) || user.Employee == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) CurrentRole(ctx context.Context, userID uint) (string, bool, error) {
	var employee models.Employee
	err := s.db.WithContext(ctx).Select("role").Where("user_id = ?", userID).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return employee.Role, true, nil
}
