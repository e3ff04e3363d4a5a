package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
)

// SessionFor builds the session a verified token would produce for a user
func SessionFor(user *models.User) *middleware.Session {
	return &middleware.Session{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
	}
}

// SeedSession returns a middleware that installs a session the same way
// RequireAuth would, bypassing token verification for integration tests
func SeedSession(session *middleware.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetSession(c, session)
		c.Next()
	}
}

// BearerToken issues a real signed token for a user. The JWT secret must be
// configured before calling this.
func BearerToken(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := middleware.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return "Bearer " + token
}
