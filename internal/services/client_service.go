package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const clientCredentialsGrant = "client_credentials"

// NewClient describes a machine client to register
type NewClient struct {
	Name        string
	Domain      string
	Scopes      string
	RedirectURI string
}

type ClientService interface {
	// CreateClient registers a client owned by ownerID and returns it along
	// with the plain secret, which is not stored and cannot be read again.
	CreateClient(ctx context.Context, ownerID uint, input NewClient) (*models.OAuthClient, string, error)
	ListClients(ctx context.Context) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, id string) error
}

type clientService struct {
	db   *gorm.DB
	cost int
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db, cost: bcrypt.DefaultCost}
}

func (s *clientService) CreateClient(ctx context.Context, ownerID uint, input NewClient) (*models.OAuthClient, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", ErrEmptyName
	}

	db := s.db.WithContext(ctx)
	var owner models.Employee
	if err := db.Where("user_id = ?", ownerID).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrEmployeeNotFound
		}
		return nil, "", err
	}

	secret := uuid.New().String()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return nil, "", err
	}

	client := &models.OAuthClient{
		ID:          uuid.New().String(),
		Secret:      string(hashed),
		Name:        name,
		Domain:      input.Domain,
		UserID:      ownerID,
		Scopes:      input.Scopes,
		GrantTypes:  clientCredentialsGrant,
		RedirectURI: input.RedirectURI,
	}
	if err := db.Create(client).Error; err != nil {
		return nil, "", err
	}

	log.WithFields(log.Fields{
		"client_id": client.ID,
		"owner_id":  ownerID,
		"role":      owner.Role,
	}).Info("OAuth client registered")
	return client, secret, nil
}

func (s *clientService) ListClients(ctx context.Context) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.WithContext(ctx).Order("created_at").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}
