package auth

// Identity is the signed-in user as reported by the identity provider
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// SessionChange is published on every sign-in and sign-out. Identity is nil
// when the session ended.
type SessionChange struct {
	UID      string
	Identity *Identity
}

// GoogleLoginRequest represents the Google popup sign-in result posted by the browser
type GoogleLoginRequest struct {
	GoogleIDToken string `json:"google_id_token"`
	// ProviderError carries the popup error code when the browser flow failed,
	// e.g. "auth/popup-closed-by-user"
	ProviderError string `json:"provider_error,omitempty"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"` // seconds
	User        *UserInfo `json:"user"`
}

// UserInfo represents user information in auth response
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (c *TokenClaims) Identity() *Identity {
	return &Identity{
		UID:         c.UserID,
		DisplayName: c.Name,
		Email:       c.Email,
		AvatarURL:   c.AvatarURL,
	}
}
