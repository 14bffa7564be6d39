package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/models"
	"github.com/tallyapp/tally/internal/pkg/config"
)

type SignInRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// AuthHandlers owns the sign-in, sign-out and registration endpoints.
type AuthHandlers struct {
	authService AuthService
	cfg         *config.SessionConfig
	logger      *zap.Logger
}

func NewAuthHandlers(authService AuthService, cfg *config.SessionConfig, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cfg:         cfg,
		logger:      logger,
	}
}

// SignIn validates credentials and sets the session cookie.
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Malformed sign-in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, expiresAt, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, models.ErrTooManyAttempts) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
			return
		}
		h.logger.Warn("Sign-in rejected", zap.String("email", req.Email), zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	SetSessionCookie(c, token, expiresAt, h.cfg.CookieSecure)

	h.logger.Info("Sign-in successful",
		zap.String("email", req.Email),
		zap.Time("expires_at", expiresAt),
	)
	c.JSON(http.StatusOK, gin.H{"redirect": h.cfg.LandingPath})
}

// SignOut clears the session cookie.
func (h *AuthHandlers) SignOut(c *gin.Context) {
	ClearSessionCookie(c, h.cfg.CookieSecure)
	c.JSON(http.StatusOK, gin.H{"redirect": h.cfg.SignInPath})
}

// Register creates a new member account.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	if err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		h.logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "could not create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"redirect": h.cfg.SignInPath})
}

// SetSessionCookie writes the session cookie with the fixed flag set:
// httpOnly, sameSite=lax, expiry mirroring the claims.
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(c *gin.Context, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
