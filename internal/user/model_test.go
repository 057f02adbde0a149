package user

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSONHidesCredentialHashes(t *testing.T) {
	u := User{
		ID:           uuid.New(),
		Email:        "jane.doe@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		SSNHash:      "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$c3Nu",
		FirstName:    "Jane",
		DateOfBirth:  time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
	}

	out, err := json.Marshal(&u)
	require.NoError(t, err)

	body := string(out)
	assert.NotContains(t, body, "argon2id")
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "ssn")
	assert.Contains(t, body, "jane.doe@example.com")
}

func TestUser_Sanitized(t *testing.T) {
	u := User{
		Email:        "jane.doe@example.com",
		PasswordHash: "hash-a",
		SSNHash:      "hash-b",
	}

	s := u.Sanitized()
	assert.Empty(t, s.PasswordHash)
	assert.Empty(t, s.SSNHash)
	assert.Equal(t, u.Email, s.Email)

	// The original is untouched.
	assert.Equal(t, "hash-a", u.PasswordHash)
	assert.Equal(t, "hash-b", u.SSNHash)
}

func TestUser_SanitizedIsACopy(t *testing.T) {
	u := &User{Email: "a@example.com"}
	s := u.Sanitized()
	s.Email = strings.ToUpper(s.Email)
	assert.Equal(t, "a@example.com", u.Email)
}
