package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDKey = "user_id"

var errNoSession = errors.New("no session")

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// SessionGate resolves the authenticated user of a request from a signed
// session cookie.
type SessionGate struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewSessionGate(cfg SessionConfig) *SessionGate {
	return &SessionGate{
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

func (g *SessionGate) Issue(c *gin.Context, userID uuid.UUID, name string) error {
	now := g.now()
	claims := sessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	g.setCookie(c, token, g.ttl)
	return nil
}

func (g *SessionGate) Clear(c *gin.Context) {
	g.setCookie(c, "", -1)
}

func (g *SessionGate) setCookie(c *gin.Context, value string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     g.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.Expires = g.now().Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	} else {
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
	}

	http.SetCookie(c.Writer, cookie)
}

// CurrentUserID returns the user id carried by the request's session cookie.
func (g *SessionGate) CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, err := c.Cookie(g.cookieName)
	if err != nil || raw == "" {
		return uuid.Nil, errNoSession
	}

	token, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errNoSession
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("session subject: %w", err)
	}

	return userID, nil
}

// RequireSession aborts with 401 unless the request carries a valid session.
func (g *SessionGate) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := g.CurrentUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func sessionUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
