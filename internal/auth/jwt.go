package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Claims holds the JWT payload. PlayerID is the stable connection identity
// the table knows the holder by.
type Claims struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager handles session token creation and validation.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager creates a JWTManager with the given secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    DefaultSessionTTL,
	}
}

// Session is a freshly minted anonymous identity.
type Session struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// IssueSession mints a new player identity and signs a token for it.
func (m *JWTManager) IssueSession(name string) (*Session, error) {
	playerID := uuid.NewString()
	token, err := m.GenerateToken(playerID, name)
	if err != nil {
		return nil, err
	}
	return &Session{
		PlayerID:  playerID,
		Name:      name,
		Token:     token,
		ExpiresIn: int(m.ttl.Seconds()),
	}, nil
}

// GenerateToken signs a session token for an existing player identity.
func (m *JWTManager) GenerateToken(playerID, name string) (string, error) {
	now := time.Now()
	claims := &Claims{
		PlayerID: playerID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   playerID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT string, returning the claims.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PlayerID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
