// Package session holds the signed in user's token, watches its expiry and
// performs the logout redirect.
package session

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"economic/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Reason explains a forced logout. It is shown on the login page.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonExpiredInitial  Reason = "session_expired_initial"
	ReasonExpiredInterval Reason = "session_expired_interval"
	ReasonCorrupt         Reason = "session_corrupt"
)

// State of a Session.
type State int

const (
	Uninitialized State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// DefaultPollInterval is how often an authenticated session re-checks expiry.
const DefaultPollInterval = 60 * time.Second

// ErrNoExpiry is returned for tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// Store persists the token between runs or requests.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Session is the auth state of one user agent. It satisfies
// client.TokenSource.
type Session struct {
	mu       sync.Mutex
	store    Store
	nav      Navigator
	interval time.Duration
	now      func() time.Time
	log      *logrus.Entry

	state  State
	token  string
	expiry time.Time
	reason Reason
	cancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithPollInterval sets the expiry poll period. Zero disables the poll.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates an uninitialized session. nav may be nil.
func New(store Store, nav Navigator, opts ...Option) *Session {
	s := &Session{
		store:    store,
		nav:      nav,
		interval: DefaultPollInterval,
		now:      time.Now,
		log:      logging.Component("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginPath is the login page, carrying reason when set.
func LoginPath(reason Reason) string {
	if reason == ReasonNone {
		return "/login"
	}
	return "/login?message=" + url.QueryEscape(string(reason))
}

// Expiry decodes the exp claim of token without verifying its signature.
// The result is a hint for the UI; the backend stays the authority.
func Expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// Init loads the stored token. An expired token logs out with
// ReasonExpiredInitial and an undecodable one with ReasonCorrupt. Only a
// store failure is returned as an error.
func (s *Session) Init() error {
	token, err := s.store.Load()
	if err != nil {
		s.mu.Lock()
		s.state = Unauthenticated
		s.mu.Unlock()
		return err
	}
	if token == "" {
		s.mu.Lock()
		s.state = Unauthenticated
		s.mu.Unlock()
		return nil
	}

	exp, err := Expiry(token)
	if err != nil {
		s.log.WithError(err).Warn("stored token cannot be decoded")
		s.Logout(ReasonCorrupt)
		return nil
	}
	if !exp.After(s.now()) {
		s.log.WithField("exp", exp).Info("stored token expired")
		s.Logout(ReasonExpiredInitial)
		return nil
	}

	s.mu.Lock()
	s.authenticate(token, exp)
	s.mu.Unlock()
	return nil
}

// Login stores a freshly issued token and navigates to the dashboard.
func (s *Session) Login(token string) error {
	exp, err := Expiry(token)
	if err != nil {
		return err
	}
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.authenticate(token, exp)
	s.mu.Unlock()
	s.navigate("/dashboard")
	return nil
}

// authenticate must be called with mu held.
func (s *Session) authenticate(token string, exp time.Time) {
	s.stopPoll()
	s.state = Authenticated
	s.token = token
	s.expiry = exp
	s.reason = ReasonNone
	s.startPoll(token)
}

// Logout clears the token and redirects to the login page.
func (s *Session) Logout(reason Reason) {
	s.mu.Lock()
	s.stopPoll()
	s.state = Unauthenticated
	s.token = ""
	s.expiry = time.Time{}
	s.reason = reason
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.log.WithError(err).Warn("clear token")
	}
	s.log.WithField("reason", string(reason)).Debug("logged out")
	s.navigate(LoginPath(reason))
}

// Close stops the poll without logging out.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopPoll()
	s.mu.Unlock()
}

// Token returns the current token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Expiry is the decoded exp of the current token.
func (s *Session) Expiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiry
}

// Reason is the cause of the last logout.
func (s *Session) Reason() Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Session) navigate(path string) {
	if s.nav != nil {
		s.nav.Navigate(path)
	}
}

func (s *Session) startPoll(token string) {
	if s.interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.poll(ctx, token)
}

func (s *Session) stopPoll() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) poll(ctx context.Context, token string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.expiredNow(ctx, token) {
				s.Logout(ReasonExpiredInterval)
				return
			}
		}
	}
}

// expiredNow reports whether token is still the current one and has expired.
func (s *Session) expiredNow(ctx context.Context, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.token != token {
		return false
	}
	return !s.expiry.After(s.now())
}
