package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeSession = "session"
	tokenTypeID      = "id"

	// BackendAudience is the audience of ID tokens sent to the chatbot backend
	BackendAudience = "rigbot-backend"
)

type JWTService struct {
	secretKey       string
	sessionDuration time.Duration
	idTokenDuration time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, sessionDuration time.Duration) *JWTService {
	if sessionDuration <= 0 {
		sessionDuration = 24 * time.Hour
	}
	return &JWTService{
		secretKey:       secretKey,
		sessionDuration: sessionDuration,
		idTokenDuration: 5 * time.Minute, // single backend call
	}
}

// GenerateSessionToken generates the dashboard session token
func (s *JWTService) GenerateSessionToken(claims *TokenClaims) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.sessionDuration)

	jwtClaims := jwt.MapClaims{
		"user_id":    claims.UserID,
		"email":      claims.Email,
		"name":       claims.Name,
		"avatar_url": claims.AvatarURL,
		"type":       tokenTypeSession,
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
	}

	tokenString, err := s.sign(jwtClaims)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, int64(s.sessionDuration.Seconds()), nil
}

// GenerateIDToken generates a short-lived bearer token identifying uid to the
// chatbot backend
func (s *JWTService) GenerateIDToken(uid, email string) (string, error) {
	now := time.Now()
	jwtClaims := jwt.MapClaims{
		"sub":   uid,
		"email": email,
		"aud":   BackendAudience,
		"type":  tokenTypeID,
		"exp":   now.Add(s.idTokenDuration).Unix(),
		"iat":   now.Unix(),
	}

	tokenString, err := s.sign(jwtClaims)
	if err != nil {
		return "", fmt.Errorf("failed to sign id token: %w", err)
	}
	return tokenString, nil
}

// ValidateSessionToken validates a session token and returns claims
func (s *JWTService) ValidateSessionToken(tokenString string) (*TokenClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != tokenTypeSession {
		return nil, fmt.Errorf("%w: not a session token", ErrInvalidToken)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: invalid user_id in token", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	avatarURL, _ := claims["avatar_url"].(string)

	return &TokenClaims{
		UserID:    userID,
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
	}, nil
}

// ValidateIDToken validates a backend ID token and returns the subject
func (s *JWTService) ValidateIDToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, jwt.WithAudience(BackendAudience))
	if err != nil {
		return "", err
	}
	if t, _ := claims["type"].(string); t != tokenTypeID {
		return "", fmt.Errorf("%w: not an id token", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

func (s *JWTService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

func (s *JWTService) parse(tokenString string, opts ...jwt.ParserOption) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	return claims, nil
}
