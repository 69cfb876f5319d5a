package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/spec-kit/line-menu-bot/internal/auth"
	"github.com/spec-kit/line-menu-bot/internal/config"
	"github.com/spec-kit/line-menu-bot/internal/domain"
	"github.com/spec-kit/line-menu-bot/internal/observability"
)

// ReplyLogReader lists recent reply audit entries.
type ReplyLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ReplyLog, error)
}

// AdminService backs the operator endpoints.
type AdminService struct {
	username     string
	passwordHash string
	tokenMgr     *auth.TokenManager
	intents      *IntentEngine
	replyLogs    ReplyLogReader
	metrics      *observability.Metrics
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	Intents   *IntentEngine
	ReplyLogs ReplyLogReader
	Metrics   *observability.Metrics
}

// NewAdminService builds the service.
func NewAdminService(cfg config.AuthConfig, deps AdminDependencies) *AdminService {
	return &AdminService{
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		tokenMgr:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		intents:      deps.Intents,
		replyLogs:    deps.ReplyLogs,
		metrics:      deps.Metrics,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AdminService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login checks admin credentials and issues a token. Login is refused while
// no password hash is configured.
func (s *AdminService) Login(username, password string) (string, time.Time, error) {
	if s.passwordHash == "" || subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return "", time.Time{}, auth.ErrInvalidCredentials
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		return "", time.Time{}, err
	}
	return s.tokenMgr.GenerateToken(username)
}

// Intents returns the keyword table in evaluation order.
func (s *AdminService) Intents() []IntentRule {
	return s.intents.Rules()
}

// Metrics returns current counters.
func (s *AdminService) Metrics() observability.Snapshot {
	return s.metrics.Snapshot()
}

// RecentReplies returns the newest reply log entries.
func (s *AdminService) RecentReplies(ctx context.Context, limit int) ([]domain.ReplyLog, error) {
	return s.replyLogs.ListRecent(ctx, limit)
}
