package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionToken is a signed login token together with the claims it carries
type SessionToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// SessionIssuer signs login tokens for employees
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(jwtSecret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(jwtSecret), ttl: ttl, now: time.Now}
}

// Issue signs a token with the uid, role and a unique jti of the user.
// The user must have its employee record loaded.
func (s *SessionIssuer) Issue(user *models.User) (SessionToken, error) {
	role := user.Role()
	if !models.IsValidRole(role) {
		return SessionToken{}, fmt.Errorf("user %d has no valid employee role", user.ID)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	jti := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  strconv.FormatUint(uint64(user.ID), 10),
		"role": role,
		"jti":  jti,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

// TTL returns the lifetime of issued tokens
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}
