package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/domain/auth"
	"github.com/tallyapp/tally/internal/observability/metrics"
	"github.com/tallyapp/tally/internal/pkg/config"
)

// RouteClass is the access-control tier a request path belongs to.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteProtected
	RouteAdmin
)

func (rc RouteClass) String() string {
	switch rc {
	case RouteProtected:
		return "protected"
	case RouteAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Classifier maps request paths to route classes via a static prefix table.
type Classifier struct {
	protectedPrefix string
	adminPrefix     string
}

func NewClassifier(protectedPrefix, adminPrefix string) *Classifier {
	return &Classifier{
		protectedPrefix: protectedPrefix,
		adminPrefix:     adminPrefix,
	}
}

// Classify is a pure function; paths matching no prefix are public.
func (cl *Classifier) Classify(path string) RouteClass {
	if strings.HasPrefix(path, cl.adminPrefix) {
		return RouteAdmin
	}
	if strings.HasPrefix(path, cl.protectedPrefix) {
		return RouteProtected
	}
	return RoutePublic
}

// Session intercepts every request outside the excluded prefixes and runs
// the per-request session state machine:
//
//	no cookie   -> protected/admin: redirect to sign-in; public: continue
//	invalid     -> clear cookie; protected/admin: redirect; public: continue
//	valid GET   -> authorize, renew cookie (expiry = now + 24h), continue
//	non-GET     -> pass through with the cookie untouched
func Session(codec auth.TokenCodec, cfg *config.SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	classifier := NewClassifier(cfg.ProtectedPrefix, cfg.AdminPrefix)

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range cfg.ExcludedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		class := classifier.Classify(path)

		// Only read methods slide the session forward; authorization of
		// mutations is the business handler's job.
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		token, err := c.Cookie(auth.SessionCookieName)
		if err != nil || token == "" {
			if class != RoutePublic {
				logger.Warn("No session on protected route",
					zap.String("path", path),
					zap.String("ip", c.ClientIP()),
				)
				c.Redirect(http.StatusFound, cfg.SignInPath)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		claims, err := codec.Verify(token)
		if err != nil {
			// Expired or tampered sessions silently become "logged out".
			auth.ClearSessionCookie(c, cfg.CookieSecure)
			if class != RoutePublic {
				logger.Warn("Invalid session token",
					zap.String("path", path),
					zap.String("ip", c.ClientIP()),
					zap.Error(err),
				)
				c.Redirect(http.StatusFound, cfg.SignInPath)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if class == RouteAdmin && !authorized(claims, cfg.PrimaryAdminID) {
			// The session stays valid, only this route is forbidden.
			logger.Warn("Admin route denied",
				zap.String("path", path),
				zap.String("user_id", claims.UserID),
				zap.String("role", string(claims.Role)),
			)
			c.Redirect(http.StatusFound, cfg.LandingPath)
			c.Abort()
			return
		}

		newToken, newExpiry, err := auth.Renew(codec, *claims, time.Now())
		if err != nil {
			logger.Error("Session renewal failed",
				zap.String("user_id", claims.UserID),
				zap.Error(err),
			)
			c.Redirect(http.StatusFound, cfg.SignInPath)
			c.Abort()
			return
		}
		auth.SetSessionCookie(c, newToken, newExpiry, cfg.CookieSecure)
		if m := metrics.Get(); m != nil {
			m.SessionRenewalsTotal.Add(c.Request.Context(), 1)
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", string(claims.Role))
		c.Set("authenticated", true)
		c.Next()
	}
}

// authorized implements the admin gate: role admin/owner, or the configured
// primary administrator.
func authorized(claims *auth.SessionClaims, primaryAdminID string) bool {
	if claims.Role.CanAdmin() {
		return true
	}
	return primaryAdminID != "" && claims.UserID == primaryAdminID
}

// OptionalSession decodes the session cookie if present and attaches the
// identity to the context, without renewal, redirects or cookie clearing.
// Used on API routes, which sit outside the interception set.
func OptionalSession(codec auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(auth.SessionCookieName); err == nil && token != "" {
			if claims, err := codec.Verify(token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("user_email", claims.Email)
				c.Set("user_role", string(claims.Role))
				c.Set("authenticated", true)
			}
		}
		c.Next()
	}
}

// GetUserIDFromContext extracts the authenticated user ID, if any.
func GetUserIDFromContext(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		return userID.(string)
	}
	return ""
}

// UserUUIDFromContext parses the authenticated user ID as a UUID.
func UserUUIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw := GetUserIDFromContext(c)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
