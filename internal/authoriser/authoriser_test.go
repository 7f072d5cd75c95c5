package authoriser

import (
	"testing"

	"github.com/jobadverts/board/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthoriser(t *testing.T, password string) Authoriser {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthoriser(config.Config{AdminUsername: "admin", AdminPasswordHash: string(hash)})
}

func TestAuthoriser_Verify(t *testing.T) {
	auth := newTestAuthoriser(t, "s3cret")

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"valid credentials", "admin", "s3cret", true},
		{"wrong password", "admin", "S3cret", false},
		{"wrong username", "root", "s3cret", false},
		{"both wrong", "root", "hunter2", false},
		{"username prefix", "adm", "s3cret", false},
		{"username case", "Admin", "s3cret", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.Verify(tt.username, tt.password))
		})
	}
}

func TestAuthoriser_VerifyOtherSalt(t *testing.T) {
	auth := newTestAuthoriser(t, "s3cret")
	other := newTestAuthoriser(t, "s3cret")
	require.NotEqual(t, auth.AdminPasswordHash, other.AdminPasswordHash, "bcrypt salts each hash")

	// salt of the first hash, checksum of the same plaintext under the second salt
	spliced := append([]byte{}, auth.AdminPasswordHash[:29]...)
	spliced = append(spliced, other.AdminPasswordHash[29:]...)
	require.True(t, other.Verify("admin", "s3cret"))
	auth.AdminPasswordHash = spliced
	assert.False(t, auth.Verify("admin", "s3cret"))
}

func TestAuthoriser_VerifyRejectsMalformedHash(t *testing.T) {
	auth := NewAuthoriser(config.Config{AdminUsername: "admin", AdminPasswordHash: "s3cret"})
	assert.False(t, auth.Verify("admin", "s3cret"), "plaintext must never be compared directly")
}

func TestAuthoriser_ValidAuthRequest(t *testing.T) {
	auth := newTestAuthoriser(t, "s3cret")
	assert.True(t, auth.ValidAuthRequest(AuthRq{Username: "admin", Password: "s3cret"}))
	assert.False(t, auth.ValidAuthRequest(AuthRq{Username: "admin"}))
}
