package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/auth"
	"github.com/franciscosanchezn/trattoria-api/internal/middleware"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Where each role lands after signing in
var roleHome = map[string]string{
	models.RoleAdministrator: "/api/v1/admin/dashboard",
	models.RoleWaiter:        "/api/v1/orders/mine",
}

type AuthController struct {
	userService services.UserService
	sessions    *auth.SessionIssuer
	revocations auth.RevocationStore
}

func NewAuthController(userService services.UserService, sessions *auth.SessionIssuer, revocations auth.RevocationStore) *AuthController {
	return &AuthController{
		userService: userService,
		sessions:    sessions,
		revocations: revocations,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Sign in
// @Description Exchange employee credentials for a bearer token and the landing route of the role
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Username and password"
// @Success 200 {object} map[string]interface{} "Token, role and redirect target"
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 429 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.WithField("username", req.Username).Warn("Failed login attempt")
		}
		respondError(c, err)
		return
	}

	session, err := ac.sessions.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"role":    user.Role(),
	}).Info("User logged in")

	c.JSON(http.StatusOK, gin.H{
		"access_token": session.Token,
		"token_type":   "Bearer",
		"expires_in":   int(ac.sessions.TTL().Seconds()),
		"role":         user.Role(),
		"redirect_to":  roleHome[user.Role()],
		"user":         user,
	})
}

// Logout godoc
// @Summary Sign out
// @Description Revoke the bearer token used for this request
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	jti := c.GetString(middleware.ContextTokenID)
	if jti == "" {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Token cannot be revoked: missing jti"))
		return
	}

	until := c.GetTime(middleware.ContextTokenExpiry)
	if until.IsZero() {
		until = time.Now().Add(ac.sessions.TTL())
	}

	if err := ac.revocations.Revoke(c.Request.Context(), jti, until); err != nil {
		respondError(c, err)
		return
	}

	log.WithField("user_id", c.GetUint(middleware.ContextUserID)).Info("User logged out")
	c.JSON(http.StatusOK, gin.H{"message": "logged_out"})
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user with its employee record
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.userService.GetUserByID(c.Request.Context(), c.GetUint(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
