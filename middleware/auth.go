package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/models"
)

// Session is the single session-verification surface for the API. Handlers
// read identity and role from here, never from raw headers or claims.
type Session struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
}

const contextSessionKey = "session"

// TokenLifetime is how long an issued session token stays valid
const TokenLifetime = 24 * time.Hour

// GenerateToken issues a signed HS256 session token for a user
func GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"email":   user.Email,
		"exp":     time.Now().Add(TokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetConfig().JWTSecret))
}

// VerifyToken parses and validates a session token string
func VerifyToken(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.GetConfig().JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, &AuthError{Code: "INVALID_TOKEN", Message: "Invalid or expired token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Invalid token claims"}
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Invalid user ID in token claims"}
	}

	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)

	return &Session{UserID: uint(userIDFloat), Role: role, Email: email}, nil
}

// RequireAuth verifies the Bearer token, confirms the user still exists, and
// seeds the session into the gin context
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "MISSING_TOKEN", "Authorization token is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "INVALID_TOKEN", "Authorization header format must be Bearer {token}")
			return
		}

		session, err := VerifyToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		// An expired account invalidates otherwise-valid tokens
		db := config.GetDB()
		var user models.User
		if err := db.First(&user, session.UserID).Error; err != nil {
			abortUnauthorized(c, "USER_NOT_FOUND", "User account no longer exists")
			return
		}

		// Role is re-read from the row so a demoted admin loses access
		// without waiting for token expiry
		session.Role = user.Role
		c.Set(contextSessionKey, session)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin sessions. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := CurrentSession(c)
		if err != nil {
			abortUnauthorized(c, "MISSING_SESSION", "Could not retrieve session")
			return
		}

		if session.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Administrator access required",
				},
			})
			return
		}

		c.Next()
	}
}

// CurrentSession extracts the verified session from the gin context
func CurrentSession(c *gin.Context) (*Session, error) {
	value, exists := c.Get(contextSessionKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_SESSION", Message: "Session not found in context"}
	}

	session, ok := value.(*Session)
	if !ok {
		return nil, &AuthError{Code: "INVALID_SESSION", Message: "Session is not in the expected format"}
	}

	return session, nil
}

// SetSession seeds a session into the gin context the same way RequireAuth
// does (used by tests)
func SetSession(c *gin.Context, session *Session) {
	c.Set(contextSessionKey, session)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
