package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"roombook/shared/password"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "minimum length", input: "abc123"},
		{name: "multibyte runes count as characters", input: "pässwö"},
		{name: "too short", input: "abc12", wantErr: password.ErrTooShort},
		{name: "empty", input: "", wantErr: password.ErrTooShort},
		{name: "exactly the bcrypt limit", input: strings.Repeat("a", password.MaxBytes)},
		{name: "over the bcrypt limit", input: strings.Repeat("a", password.MaxBytes+1), wantErr: password.ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, password.Check(tt.input), tt.wantErr)
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.NoError(t, password.Verify("correct horse", hash))
	assert.ErrorIs(t, password.Verify("wrong horse", hash), password.ErrInvalidPassword)

	other, err := password.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "each hash is salted")
}

func TestHash_RejectsPolicyViolations(t *testing.T) {
	_, err := password.Hash("short")

	assert.ErrorIs(t, err, password.ErrTooShort)
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name      string
		plain     string
		hash      string
		wantErr   error
		wantOther bool
	}{
		{name: "empty password", hash: "$2a$10$abcdefghijklmnopqrstuv", wantErr: password.ErrInvalidPassword},
		{name: "empty hash", plain: "secret1", wantErr: password.ErrInvalidPassword},
		{name: "not a bcrypt hash", plain: "secret1", hash: "plaintext", wantOther: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.plain, tt.hash)

			require.Error(t, err)

			if tt.wantOther {
				assert.NotErrorIs(t, err, password.ErrInvalidPassword)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	current, err := password.Hash("secret1")
	require.NoError(t, err)

	assert.True(t, password.NeedsRehash(string(weak)))
	assert.False(t, password.NeedsRehash(current))
	assert.False(t, password.NeedsRehash("garbage"))
}
