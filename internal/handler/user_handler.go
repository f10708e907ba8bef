package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-admin-api/internal/middleware"
	"github.com/noah-isme/dorm-admin-api/internal/models"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
	"github.com/noah-isme/dorm-admin-api/pkg/response"
)

type sessionService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string)
	WhoAmI(principal *models.Principal) models.SessionInfo
	ListAccounts(ctx context.Context, principal *models.Principal) ([]models.AccountSummary, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// UserHandler wires the session endpoints.
type UserHandler struct {
	service sessionService
	cookie  CookieConfig
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc sessionService, cookie CookieConfig) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = "sessionid"
	}
	return &UserHandler{service: svc, cookie: cookie}
}

// Info godoc
// @Summary Describe the caller
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /user/info [get]
func (h *UserHandler) Info(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.WhoAmI(middleware.PrincipalFromContext(c)))
}

// List godoc
// @Summary List accounts
// @Description Privileged accounts only
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /user/list [get]
func (h *UserHandler) List(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context(), middleware.PrincipalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts)
}

// Login godoc
// @Summary Open a session
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, res.Token, maxAge, "/", "", h.cookie.Secure, true)
	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Close the current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /user/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), middleware.SessionToken(c, h.cookie.Name))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}
