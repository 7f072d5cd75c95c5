package authoriser

import (
	"crypto/subtle"

	"github.com/jobadverts/board/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Authoriser verifies credentials against the single administrator
// identity configured at startup.
type Authoriser struct {
	AdminUsername     string
	AdminPasswordHash []byte
}

type AuthRq struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func NewAuthoriser(cfg config.Config) Authoriser {
	return Authoriser{
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: []byte(cfg.AdminPasswordHash),
	}
}

// Verify reports whether username and password match the administrator.
// The password hash is always checked so a wrong username costs the same
// time as a wrong password.
func (a Authoriser) Verify(username, password string) bool {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.AdminUsername)) == 1
	passwordOK := bcrypt.CompareHashAndPassword(a.AdminPasswordHash, []byte(password)) == nil
	return usernameOK && passwordOK
}

func (a Authoriser) ValidAuthRequest(authRq AuthRq) bool {
	return a.Verify(authRq.Username, authRq.Password)
}
