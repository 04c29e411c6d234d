package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
)

const identityKey = "identity"

// TokenTransport selects where the auth gate looks for the session token.
type TokenTransport int

const (
	// TransportCookie reads the token from a cookie and redirects
	// unauthenticated browsers to the login page.
	TransportCookie TokenTransport = iota
	// TransportHeader reads a bearer token and answers 401 JSON, for
	// API-style deployments.
	TransportHeader
)

// ParseTransport maps the config value to a transport mode.
func ParseTransport(name string) TokenTransport {
	if name == "header" {
		return TransportHeader
	}
	return TransportCookie
}

// AuthRequired gates a route group behind a verified token. Every failure
// mode (missing, malformed, bad signature, expired) produces the same
// response so the reply reveals nothing about why verification failed.
func AuthRequired(tokens ports.TokenService, transport TokenTransport, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := extractToken(c, transport, cookieName)
		if !ok {
			reject(c, transport)
			return
		}

		identity, err := tokens.Verify(raw)
		if err != nil {
			reject(c, transport)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity set by AuthRequired. The second
// return is false on routes that are not behind the gate.
func CurrentIdentity(c *gin.Context) (domain.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok
}

func extractToken(c *gin.Context, transport TokenTransport, cookieName string) (string, bool) {
	switch transport {
	case TransportHeader:
		header := c.GetHeader("Authorization")
		if header == "" {
			return "", false
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	default:
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			return "", false
		}
		return token, true
	}
}

func reject(c *gin.Context, transport TokenTransport) {
	if transport == TransportHeader {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	} else {
		target := "/login"
		if path := c.Request.URL.Path; path != "" && path != "/login" {
			target += "?redirect=" + url.QueryEscape(path)
		}
		c.Redirect(http.StatusSeeOther, target)
	}
	c.Abort()
}
