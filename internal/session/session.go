package session

import (
	"fmt"
	"net/http"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

const (
	cookieName = "____ja"
	jwtKey     = "jwt"

	FlashSuccess = "success"
	FlashDanger  = "danger"
)

var ErrAuthDenied = errors.New("admin session required")

// AdminJWT is the token kept in the cookie session once the administrator
// has logged in. It carries no expiry: the session lasts until logout or
// until the cookie itself expires.
type AdminJWT struct {
	IsAdmin bool `json:"is_admin"`
	jwt.StandardClaims
}

// AdminSession is the per request view of the admin session.
type AdminSession struct {
	Authenticated bool
}

// RequireAdmin denies anything but an authenticated admin session.
func RequireAdmin(sess AdminSession) error {
	if !sess.Authenticated {
		return ErrAuthDenied
	}
	return nil
}

type Flash struct {
	Kind    string
	Message string
}

type Manager struct {
	store      sessions.Store
	signingKey []byte
	issuer     string
}

func NewManager(store sessions.Store, signingKey []byte, issuer string) Manager {
	return Manager{store: store, signingKey: signingKey, issuer: issuer}
}

// Get returns the admin session attached to r. Any missing, undecodable or
// tampered cookie is an anonymous session.
func (m Manager) Get(r *http.Request) AdminSession {
	sess, err := m.store.Get(r, cookieName)
	if err != nil {
		return AdminSession{}
	}
	tk, ok := sess.Values[jwtKey].(string)
	if !ok {
		return AdminSession{}
	}
	token, err := jwt.ParseWithClaims(tk, &AdminJWT{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil || !token.Valid {
		return AdminSession{}
	}
	claims, ok := token.Claims.(*AdminJWT)
	if !ok {
		return AdminSession{}
	}
	return AdminSession{Authenticated: claims.IsAdmin}
}

// Login marks the session as authenticated.
func (m Manager) Login(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.Get(r, cookieName)
	if err != nil && sess == nil {
		return errors.Wrap(err, "unable to get session")
	}
	claims := AdminJWT{
		IsAdmin: true,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: time.Now().UTC().Unix(),
			Issuer:   m.issuer,
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return errors.Wrap(err, "unable to sign admin token")
	}
	sess.Values[jwtKey] = ss
	if err := sess.Save(r, w); err != nil {
		return errors.Wrap(err, "unable to save jwt into session cookie")
	}
	return nil
}

// Logout drops the authenticated marker. Pending flash messages survive.
func (m Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.Get(r, cookieName)
	if err != nil && sess == nil {
		return errors.Wrap(err, "unable to get session")
	}
	delete(sess.Values, jwtKey)
	if err := sess.Save(r, w); err != nil {
		return errors.Wrap(err, "unable to clear session cookie")
	}
	return nil
}

func (m Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	sess, err := m.store.Get(r, cookieName)
	if err != nil && sess == nil {
		return errors.Wrap(err, "unable to get session")
	}
	sess.AddFlash(message, kind)
	return sess.Save(r, w)
}

// Flashes pops every pending flash message.
func (m Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := m.store.Get(r, cookieName)
	if err != nil {
		return nil
	}
	var flashes []Flash
	for _, kind := range []string{FlashSuccess, FlashDanger} {
		for _, f := range sess.Flashes(kind) {
			if msg, ok := f.(string); ok {
				flashes = append(flashes, Flash{Kind: kind, Message: msg})
			}
		}
	}
	if len(flashes) > 0 {
		sess.Save(r, w)
	}
	return flashes
}
