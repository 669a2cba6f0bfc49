package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// Feed token roles, embedded in the "role" claim.
const (
	FeedRoleScorer    = "scorer"
	FeedRoleSpectator = "spectator"
)

// FeedTokenService mints signed tokens granting read access to a game's
// live feed. Spectator tokens are handed to scoreboard clients that join
// over the public listing; scorer tokens additionally permit mutations.
type FeedTokenService struct {
	secret string
	issuer string
	ttl    time.Duration
}

func NewFeedTokenService(secret, issuer string, ttl time.Duration) *FeedTokenService {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &FeedTokenService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// GenerateToken mints a token binding userID to gameID with the given role.
func (s *FeedTokenService) GenerateToken(userID, gameID, role string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("feed token service is nil")
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if gameID == "" {
		return "", fmt.Errorf("game is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("feed token config is incomplete")
	}
	switch role {
	case FeedRoleScorer, FeedRoleSpectator:
	default:
		return "", fmt.Errorf("unsupported feed role: %s", role)
	}

	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  userID,
		"exp":  time.Now().Add(s.ttl).Unix(),
		"game": gameID,
		"role": role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken parses a token and returns the game id and role it grants.
func (s *FeedTokenService) VerifyToken(tokenString string) (gameID, role string, err error) {
	if s == nil || s.secret == "" {
		return "", "", fmt.Errorf("feed token config is incomplete")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid feed token")
	}
	gameID, _ = claims["game"].(string)
	role, _ = claims["role"].(string)
	if gameID == "" || role == "" {
		return "", "", fmt.Errorf("invalid feed token claims")
	}
	return gameID, role, nil
}
