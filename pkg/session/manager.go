package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"instadm/pkg/auth"
	"instadm/pkg/instagram"
	"instadm/pkg/logger"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultCooldown = 2 * time.Second
)

// Manager establishes, validates and replaces authenticated sessions for a
// single account. Restoration priority: cookie artifact, session-settings
// artifact, fresh login with a stable device identity. Re-authentication is a
// full reset, never an incremental refresh.
type Manager struct {
	creds     auth.Credentials
	dir       string
	timeout   time.Duration
	cooldown  time.Duration
	prompter  CodePrompter
	logger    logger.Logger
	transport http.RoundTripper
}

// Option configures a Manager.
type Option func(*Manager)

// WithCooldown sets the wait inserted before re-establishing after an
// invalidated session.
func WithCooldown(d time.Duration) Option {
	return func(m *Manager) { m.cooldown = d }
}

// WithTimeout sets the HTTP timeout for API calls.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithPrompter sets the verification-code prompter used during challenges.
func WithPrompter(p CodePrompter) Option {
	return func(m *Manager) { m.prompter = p }
}

// WithTransport replaces the HTTP transport on every client the manager
// creates. Used by tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(m *Manager) { m.transport = rt }
}

// NewManager creates a session manager storing artifacts under dir.
func NewManager(creds auth.Credentials, dir string, log logger.Logger, opts ...Option) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	m := &Manager{
		creds:    creds,
		dir:      dir,
		timeout:  defaultTimeout,
		cooldown: defaultCooldown,
		prompter: NewConsolePrompter(),
		logger:   log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Establish returns an active session, restoring persisted artifacts when
// possible and falling back to a fresh login.
func (m *Manager) Establish(ctx context.Context) (*Session, error) {
	username := m.creds.Username
	log := m.logger.WithField("username", username)

	// 1. Cookie artifact, validated with a cheap probe.
	cookies, err := loadCookies(CookiesPath(m.dir, username))
	if err != nil {
		log.WithError(err).Warn("unreadable cookie artifact, skipping")
	}
	if len(cookies) > 0 {
		settings := instagram.NewSettings(username)
		settings.Cookies = cookies
		client := m.newClient(settings)
		if err := client.TimelineFeed(); err == nil {
			log.Info("session restored from cookie artifact")
			return &Session{Username: username, Client: client, state: StateActive}, nil
		}
		log.Warn("cookie artifact no longer valid")
	}

	// 2. Session-settings artifact, validated the same way.
	settingsPath := SettingsPath(m.dir, username)
	settings, err := loadSettings(settingsPath)
	if err != nil {
		log.WithError(err).Warn("unreadable session artifact, skipping")
	}
	if settings != nil {
		client := m.newClient(settings)
		if err := client.TimelineFeed(); err == nil {
			log.Info("session restored from settings artifact")
			return &Session{Username: username, Client: client, state: StateActive}, nil
		}
		log.Warn("session artifact no longer valid, removing")
		if err := removeIfExists(settingsPath); err != nil {
			log.WithError(err).Warn("failed to remove stale session artifact")
		}
		if err := m.waitCooldown(ctx); err != nil {
			return nil, err
		}
	}

	// 3. Fresh login with the stable device identity.
	return m.freshLogin(ctx)
}

// EnsureValid probes the session and re-establishes it when the platform
// signals that re-authentication is required. Any other probe failure is
// propagated unchanged.
func (m *Manager) EnsureValid(ctx context.Context, sess *Session) (*Session, error) {
	if sess == nil || sess.state != StateActive {
		return m.Establish(ctx)
	}

	err := sess.Client.TimelineFeed()
	if err == nil {
		return sess, nil
	}
	if instagram.IsSessionInvalid(err) {
		m.logger.WithField("username", sess.Username).Warn("session expired, re-authenticating")
		sess.expire()
		return m.Reset(ctx)
	}
	return nil, err
}

// Reset discards the persisted session artifact, waits a short cooldown and
// establishes a brand new session.
func (m *Manager) Reset(ctx context.Context) (*Session, error) {
	path := SettingsPath(m.dir, m.creds.Username)
	if err := removeIfExists(path); err != nil {
		m.logger.WithError(err).Warn("failed to remove session artifact")
	}
	if err := m.waitCooldown(ctx); err != nil {
		return nil, err
	}
	return m.Establish(ctx)
}

func (m *Manager) freshLogin(ctx context.Context) (*Session, error) {
	username := m.creds.Username
	log := m.logger.WithField("username", username)
	log.Info("creating new session with fixed device identity")

	settings := instagram.NewSettings(username)
	client := m.newClient(settings)

	_, err := client.Login(username, m.creds.Password)
	if err != nil {
		if instagram.KindOf(err) != instagram.KindChallengeRequired {
			return nil, fmt.Errorf("login failed: %w", err)
		}
		if err := m.completeChallenge(client); err != nil {
			return nil, err
		}
	}

	if err := m.persist(client); err != nil {
		log.WithError(err).Warn("failed to persist session artifacts")
	} else {
		log.Info("session artifacts persisted")
	}
	return &Session{Username: username, Client: client, state: StateActive}, nil
}

// completeChallenge attempts automatic resolution first and falls back to an
// out-of-band verification code. A challenge that cannot be completed is
// fatal for the run.
func (m *Manager) completeChallenge(client *instagram.Client) error {
	m.logger.Warn("identity challenge required")

	resolved, err := client.ResolveChallenge()
	if err == nil && resolved {
		m.logger.Info("challenge resolved automatically")
		return nil
	}

	code, err := m.prompter.PromptCode()
	if err != nil {
		return fmt.Errorf("challenge not completed: %w", err)
	}
	if err := client.SubmitChallengeCode(code); err != nil {
		return fmt.Errorf("challenge not completed: %w", err)
	}
	m.logger.Info("challenge completed")
	return nil
}

// persist writes the session-settings artifact and the derived cookie
// artifact for the account.
func (m *Manager) persist(client *instagram.Client) error {
	settings := client.Settings()
	if err := writeJSON(SettingsPath(m.dir, settings.Username), settings); err != nil {
		return err
	}
	return writeJSON(CookiesPath(m.dir, settings.Username), settings.Cookies)
}

func (m *Manager) newClient(settings *instagram.Settings) *instagram.Client {
	client := instagram.NewClient(m.timeout, settings, m.logger)
	if m.transport != nil {
		client.SetTransport(m.transport)
	}
	return client
}

func (m *Manager) waitCooldown(ctx context.Context) error {
	if m.cooldown <= 0 {
		return nil
	}
	timer := time.NewTimer(m.cooldown)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
