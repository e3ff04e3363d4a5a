package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserTableName(t *testing.T) {
	user := User{}
	assert.Equal(t, "users", user.TableName(), "Table name should be 'users'")
}

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"user role", RoleUser, false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{Role: tt.role}
			assert.Equal(t, tt.expected, user.IsAdmin())
		})
	}
}

func TestValidCorrectionStatus(t *testing.T) {
	assert.True(t, ValidCorrectionStatus(CorrectionPending))
	assert.True(t, ValidCorrectionStatus(CorrectionApproved))
	assert.True(t, ValidCorrectionStatus(CorrectionDeclined))
	assert.False(t, ValidCorrectionStatus("pending"), "status values are capitalized")
	assert.False(t, ValidCorrectionStatus("Maybe"))
}
