package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
	"murmurnet/internal/infrastructure/middleware"
	apperrors "murmurnet/pkg/errors"
	"murmurnet/pkg/validation"
)

// AuthHandler serves account signup and login on both the browser surface
// (HTML forms, session cookie) and the API surface (JSON, bearer token).
type AuthHandler struct {
	users      ports.UserService
	transport  middleware.TokenTransport
	cookieName string
	tokenTTL   time.Duration
	logger     *zap.SugaredLogger
}

func NewAuthHandler(users ports.UserService, transport middleware.TokenTransport, cookieName string, tokenTTL time.Duration, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		transport:  transport,
		cookieName: cookieName,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/signup", h.SignupPage)
	router.POST("/signup", h.Signup)
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
}

type credentialsRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=50"`
	Password string `json:"password" form:"password" binding:"required,max=128"`
}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{})
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	req, ok := h.bindCredentials(c, "signup.html")
	if !ok {
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.renderError(c, "signup.html", http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		h.renderError(c, "signup.html", http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			h.renderError(c, "signup.html", http.StatusConflict, "username already taken")
			return
		}
		h.logger.Errorw("signup failed", "error", err)
		c.Error(apperrors.NewInternalError("could not create account"))
		return
	}

	h.logger.Infow("user registered", "user_id", user.ID, "username", user.Username)
	h.issueSession(c, user, token, http.StatusCreated)
}

func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := h.bindCredentials(c, "login.html")
	if !ok {
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLogin) {
			h.renderError(c, "login.html", http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.logger.Errorw("login failed", "error", err)
		c.Error(apperrors.NewInternalError("could not log in"))
		return
	}

	h.issueSession(c, user, token, http.StatusOK)
}

// Logout clears the session cookie. Tokens themselves stay valid until
// expiry since the server keeps no session state.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.transport == middleware.TransportCookie {
		c.SetCookie(h.cookieName, "", -1, "/", "", true, true)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *AuthHandler) bindCredentials(c *gin.Context, template string) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, template, http.StatusBadRequest, "username and password are required")
		return req, false
	}
	req.Username = strings.TrimSpace(req.Username)
	return req, true
}

// issueSession delivers the token over the configured transport: a session
// cookie plus redirect for browsers, a JSON body for API clients.
func (h *AuthHandler) issueSession(c *gin.Context, user *domain.User, token string, jsonStatus int) {
	if h.transport == middleware.TransportCookie && !wantsJSON(c) {
		maxAge := int(h.tokenTTL / time.Second)
		c.SetCookie(h.cookieName, token, maxAge, "/", "", true, true)

		// only follow same-site relative targets
		target := c.Query("redirect")
		if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
			target = "/"
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	c.JSON(jsonStatus, gin.H{
		"user_id":    user.ID,
		"username":   user.Username,
		"token":      token,
		"expires_in": int(h.tokenTTL / time.Second),
	})
}

func (h *AuthHandler) renderError(c *gin.Context, template string, status int, message string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.HTML(status, template, gin.H{"Error": message})
}

// wantsJSON reports whether the client is an API consumer rather than a
// browser form submission.
func wantsJSON(c *gin.Context) bool {
	if c.ContentType() == "application/json" {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
