package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/logging"
	"github.com/feelsunbreeze/spps_tui/internal/models"
)

type Credentials struct {
	Username string
	Password string
}

type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrInvalidCredentials
	ErrNetworkIssue
	ErrParsingError
)

// Backend is the part of the API client the guard needs.
type Backend interface {
	Login(ctx context.Context, username, password string) (models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
	ClearCookies()
}

// Guard owns the authentication state of the running client. It is created
// once in main and handed to whoever needs to know who is logged in.
type Guard struct {
	backend Backend
	store   *Store
	logger  *zap.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewGuard creates a guard. store may be nil, in which case sessions live
// only as long as the process.
func NewGuard(backend Backend, store *Store, logger *zap.Logger) *Guard {
	return &Guard{
		backend: backend,
		store:   store,
		logger:  logging.OrNop(logger).Named("session"),
	}
}

// Resolve issues the single startup identity probe. Failure of any kind
// means "not logged in" and is not reported as an error.
func (g *Guard) Resolve(ctx context.Context) bool {
	if g.store != nil {
		cookies, err := g.store.Load()
		if err != nil {
			g.logger.Warn("Failed to load saved session", zap.Error(err))
		} else if len(cookies) > 0 {
			g.backend.SetCookies(cookies)
		}
	}

	user, err := g.backend.Me(ctx)
	if err != nil {
		g.logger.Info("No active session", zap.Error(err))
		if errors.Is(err, api.ErrUnauthorized) {
			g.Clear()
		} else {
			g.dropUser()
		}
		return false
	}

	g.setUser(user)
	g.logger.Info("Session resolved", zap.String("username", user.Username))
	return true
}

// Login authenticates and records the profile. The detail string carries
// the backend's message when there is one.
func (g *Guard) Login(ctx context.Context, creds Credentials) (ErrorCode, string) {
	if creds.Username == "" || creds.Password == "" {
		return ErrInvalidCredentials, ""
	}

	user, err := g.backend.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		g.logger.Warn("Login failed", zap.String("username", creds.Username), zap.Error(err))
		return loginErrorCode(err), api.Message(err, err.Error())
	}

	if user.Username == "" {
		user, err = g.backend.Me(ctx)
		if err != nil {
			g.logger.Error("Login succeeded but profile lookup failed", zap.Error(err))
			return ErrParsingError, api.Message(err, err.Error())
		}
	}

	g.setUser(user)
	if g.store != nil {
		if err := g.store.Save(g.backend.Cookies()); err != nil {
			g.logger.Warn("Failed to save session", zap.Error(err))
		}
	}

	g.logger.Info("Logged in", zap.String("username", user.Username))
	return ErrNone, ""
}

func loginErrorCode(err error) ErrorCode {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return ErrInvalidCredentials
		}
		return ErrNetworkIssue
	}
	return ErrNetworkIssue
}

// Logout ends the session. The local sign-out happens whatever the backend
// says; a failed logout call is only logged.
func (g *Guard) Logout(ctx context.Context) {
	if err := g.backend.Logout(ctx); err != nil {
		g.logger.Warn("Logout request failed", zap.Error(err))
	}
	g.Clear()
	g.logger.Info("Logged out")
}

// Clear drops the current user together with the session cookies.
func (g *Guard) Clear() {
	g.dropUser()
	g.backend.ClearCookies()
	if g.store != nil {
		if err := g.store.Delete(); err != nil {
			g.logger.Warn("Failed to delete saved session", zap.Error(err))
		}
	}
}

func (g *Guard) CurrentUser() (models.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return models.User{}, false
	}
	return *g.user, true
}

func (g *Guard) LoggedIn() bool {
	_, ok := g.CurrentUser()
	return ok
}

func (g *Guard) setUser(user models.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = &user
}

func (g *Guard) dropUser() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = nil
}
