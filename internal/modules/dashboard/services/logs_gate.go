package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/cache"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/metrics"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	// GateMaxFailures failed attempts per GateWindow lock an IP out
	GateMaxFailures = 5
	GateWindow      = 15 * time.Minute
	// GateTTL is how long a granted pass stays valid
	GateTTL = 12 * time.Hour

	gateTokenType = "logs"
)

// LogsGate is the shared-password check in front of the log viewer. It keeps
// casual visitors out; it is not an authorization mechanism.
type LogsGate struct {
	hash    string
	secret  []byte
	limiter cache.AttemptLimiter
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewLogsGate hashes password once so the plaintext is not kept around
func NewLogsGate(password string, secret string, limiter cache.AttemptLimiter, m *metrics.Metrics, cost int) (*LogsGate, error) {
	if password == "" {
		return nil, errors.New("logs gate password is empty")
	}
	if secret == "" {
		return nil, errors.New("logs gate signing secret is empty")
	}
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	return &LogsGate{
		hash:    hash,
		secret:  []byte(secret),
		limiter: limiter,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Unlock checks password for the client at ip and returns a pass token
func (g *LogsGate) Unlock(ctx context.Context, ip, password string) (string, time.Time, error) {
	blocked, err := g.limiter.Blocked(ctx, ip)
	if err != nil {
		// Limiter outage must not lock everyone out
		log.Warn().Err(err).Msg("⚠️ Attempt limiter unavailable")
	}
	if blocked {
		g.observe("throttled")
		return "", time.Time{}, ErrTooManyAttempts
	}

	if !auth.VerifyPassword(g.hash, password) {
		if n, err := g.limiter.Fail(ctx, ip); err != nil {
			log.Warn().Err(err).Msg("⚠️ Failed to record gate attempt")
		} else if n >= GateMaxFailures {
			log.Warn().Str("ip", ip).Int64("failures", n).Msg("🚫 Logs gate locked for IP")
		}
		g.observe("denied")
		return "", time.Time{}, ErrWrongPassword
	}

	if err := g.limiter.Reset(ctx, ip); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to reset gate attempts")
	}

	expires := g.now().Add(GateTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"type": gateTokenType,
		"iat":  g.now().Unix(),
		"exp":  expires.Unix(),
	}).SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign gate token: %w", err)
	}
	g.observe("granted")
	return token, expires, nil
}

// Allowed reports whether token is a valid, unexpired pass
func (g *LogsGate) Allowed(token string) bool {
	if token == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid {
		return false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	return ok && claims["type"] == gateTokenType
}

func (g *LogsGate) observe(result string) {
	if g.metrics != nil {
		g.metrics.LogsGate.WithLabelValues(result).Inc()
	}
}
