package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 64

type Service struct {
	verifier   TokenVerifier
	jwtService *JWTService

	mu     sync.Mutex
	subs   map[int]chan SessionChange
	nextID int
}

// NewService creates a new auth service
func NewService(verifier TokenVerifier, jwtSecret string, sessionTTL time.Duration) *Service {
	return &Service{
		verifier:   verifier,
		jwtService: NewJWTService(jwtSecret, sessionTTL),
		subs:       make(map[int]chan SessionChange),
	}
}

// LoginWithGoogle verifies the Google ID token, issues a session token and
// publishes the sign-in to subscribers
func (s *Service) LoginWithGoogle(ctx context.Context, googleIDToken string) (*AuthResponse, *Identity, error) {
	if googleIDToken == "" {
		return nil, nil, fmt.Errorf("%w: empty google id token", ErrInvalidToken)
	}

	googleUser, err := s.verifier.VerifyIDToken(ctx, googleIDToken)
	if err != nil {
		return nil, nil, err
	}

	ident := &Identity{
		UID:         googleUser.GoogleID,
		DisplayName: googleUser.Name,
		Email:       googleUser.Email,
		AvatarURL:   googleUser.AvatarURL,
	}

	resp, err := s.issue(ident)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("client_id", ident.UID).Str("email", ident.Email).Msg("✅ User logged in via Google")
	s.publish(SessionChange{UID: ident.UID, Identity: ident})
	return resp, ident, nil
}

// Logout ends the session of uid and publishes the sign-out
func (s *Service) Logout(uid string) {
	if uid == "" {
		return
	}
	log.Info().Str("client_id", uid).Msg("✅ User logged out")
	s.publish(SessionChange{UID: uid})
}

// ValidateToken validates a session token and returns the identity
func (s *Service) ValidateToken(sessionToken string) (*Identity, error) {
	claims, err := s.jwtService.ValidateSessionToken(sessionToken)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

// IDToken mints a short-lived bearer credential for one backend call
func (s *Service) IDToken(ident *Identity) (string, error) {
	if ident == nil {
		return "", ErrUnauthenticated
	}
	return s.jwtService.GenerateIDToken(ident.UID, ident.Email)
}

// Subscribe registers a session-change listener. The returned func removes
// the subscription and closes the channel.
func (s *Service) Subscribe() (<-chan SessionChange, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan SessionChange, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Service) publish(change SessionChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			log.Warn().Str("client_id", change.UID).Msg("⚠️ Session subscriber is full, dropping change")
		}
	}
}

func (s *Service) issue(ident *Identity) (*AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateSessionToken(&TokenClaims{
		UserID:    ident.UID,
		Email:     ident.Email,
		Name:      ident.DisplayName,
		AvatarURL: ident.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &AuthResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		User: &UserInfo{
			ID:        ident.UID,
			Email:     ident.Email,
			Name:      ident.DisplayName,
			AvatarURL: ident.AvatarURL,
		},
	}, nil
}
