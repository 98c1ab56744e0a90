package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// TokenVerifier verifies an identity provider token and returns the user
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error)
}

// GoogleOAuthService handles Google OAuth operations
type GoogleOAuthService struct {
	clientID string
}

// NewGoogleOAuthService creates a new Google OAuth service
func NewGoogleOAuthService(clientID string) *GoogleOAuthService {
	return &GoogleOAuthService{
		clientID: clientID,
	}
}

// GoogleUserInfo represents user information from Google
type GoogleUserInfo struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// VerifyIDToken verifies Google ID token and returns user information
func (s *GoogleOAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	payload, err := idtoken.Validate(ctx, idToken, s.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	googleID, ok := payload.Claims["sub"].(string)
	if !ok || googleID == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	avatarURL, _ := payload.Claims["picture"].(string)

	emailVerified, _ := payload.Claims["email_verified"].(bool)
	if email != "" && !emailVerified {
		return nil, ErrEmailNotVerified
	}

	return &GoogleUserInfo{
		GoogleID:  googleID,
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
	}, nil
}
