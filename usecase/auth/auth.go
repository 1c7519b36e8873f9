package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/repository"
)

// Config tunes the session manager.
type Config struct {
	// IdentityTimeout bounds every identity or social provider call.
	IdentityTimeout time.Duration
}

// RegisterInput carries a registration request. An empty Role means student.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        domain.Role
}

// Manager owns the current session, its persisted record and the derived
// authorization view. All mutations go through commit, which applies a
// change only when its generation is newer than the last applied one.
type Manager struct {
	sessions  repository.SessionRepository
	directory repository.IdentityDirectory
	social    repository.SocialProvider
	operator  OperatorPolicy
	timeout   time.Duration
	logger    *zap.Logger

	mu        sync.Mutex
	current   *domain.Session
	issued    uint64
	committed uint64
	inflight  int
	closed    bool
	watchers  map[int]chan domain.AuthorizationView
	watcherID int

	baseCtx context.Context
	cancel  context.CancelFunc
	pending sync.WaitGroup
}

func New(
	sessions repository.SessionRepository,
	directory repository.IdentityDirectory,
	social repository.SocialProvider,
	operator OperatorPolicy,
	cfg Config,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if operator == nil {
		operator = NoOperator{}
	}
	if cfg.IdentityTimeout <= 0 {
		cfg.IdentityTimeout = 10 * time.Second
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions:  sessions,
		directory: directory,
		social:    social,
		operator:  operator,
		timeout:   cfg.IdentityTimeout,
		logger:    logger,
		watchers:  make(map[int]chan domain.AuthorizationView),
		baseCtx:   baseCtx,
		cancel:    cancel,
	}
}

// Restore loads the persisted session. Missing or corrupt records leave the
// manager unauthenticated; only store I/O failures are returned.
func (m *Manager) Restore(ctx context.Context) error {
	gen, err := m.begin()
	if err != nil {
		return err
	}
	defer m.end()

	session, loadErr := m.sessions.Get(ctx)
	switch {
	case loadErr == nil:
	case errors.Is(loadErr, domain.ErrSessionNotFound):
		session = nil
		loadErr = nil
	case domain.IsDomainError(loadErr, domain.ErrCodeCorrupt):
		m.logger.Warn("discarding corrupt persisted session", zap.Error(loadErr))
		if err := m.sessions.Delete(ctx); err != nil {
			m.logger.Warn("failed to delete corrupt session record", zap.Error(err))
		}
		session = nil
		loadErr = nil
	default:
		m.logger.Error("session store unavailable during restore", zap.Error(loadErr))
		session = nil
	}

	if err := m.commit(ctx, gen, session, false, nil); err != nil {
		if errors.Is(err, domain.ErrSuperseded) {
			return nil
		}
		return err
	}
	if session != nil {
		m.logger.Info("session restored", zap.String("session_id", session.ID), zap.String("role", string(session.Role)))
	}
	return loadErr
}

// Login authenticates the credentials and replaces the current session.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}
	gen, err := m.begin()
	if err != nil {
		return nil, err
	}
	defer m.end()

	callCtx, cancel := m.attemptContext(ctx)
	defer cancel()

	identity, err := m.authenticate(callCtx, email, password)
	if err != nil {
		m.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return m.establish(callCtx, gen, identity, "login", nil)
}

// Register creates an account with the requested role and logs it in.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if m.operator.Reserved(in.Email) {
		return nil, domain.ErrReservedIdentity
	}
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}
	if in.Role == "" {
		in.Role = domain.RoleStudent
	}
	if in.Role != domain.RoleStudent && in.Role != domain.RoleInstructor {
		return nil, domain.NewError(domain.ErrCodeInvalid, "role must be student or instructor")
	}
	gen, err := m.begin()
	if err != nil {
		return nil, err
	}
	defer m.end()

	callCtx, cancel := m.attemptContext(ctx)
	defer cancel()

	identity, err := m.directory.Register(callCtx, in.Email, in.Password, in.DisplayName, in.Role)
	if err != nil {
		m.logger.Warn("registration failed", zap.String("email", in.Email), zap.Error(err))
		return nil, classify(callCtx, err, "registration failed")
	}
	identity.Role = in.Role
	if in.DisplayName != "" {
		identity.DisplayName = in.DisplayName
	}
	return m.establish(callCtx, gen, identity, "register", nil)
}

// LoginWithSocialProvider starts a provider handshake in the background and
// returns immediately. The returned attempt reports the outcome; if a newer
// login commits first or the manager is torn down, the handshake result is
// discarded.
func (m *Manager) LoginWithSocialProvider(provider domain.SocialProvider) (*Attempt, error) {
	if !provider.Valid() {
		return nil, domain.ErrUnknownProvider
	}
	if m.social == nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "social login is not configured")
	}
	gen, err := m.begin()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(m.baseCtx, m.timeout)
	attempt := newAttempt(provider, cancel)

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		defer m.end()
		defer cancel()

		m.logger.Info("social login started", zap.String("provider", string(provider)))
		identity, err := m.social.Complete(ctx, provider)
		if err != nil {
			if m.baseCtx.Err() != nil {
				attempt.finish(nil, domain.ErrManagerClosed)
				return
			}
			m.logger.Warn("social login failed", zap.String("provider", string(provider)), zap.Error(err))
			attempt.finish(nil, classify(ctx, err, "social login failed"))
			return
		}
		// A provider may answer after Cancel or the deadline without
		// looking at ctx; the commit re-checks it under the lock.
		session, err := m.establish(ctx, gen, identity, "social:"+string(provider), func() error {
			switch {
			case ctx.Err() == nil:
				return nil
			case errors.Is(ctx.Err(), context.DeadlineExceeded):
				return classify(ctx, ctx.Err(), "social login failed")
			default:
				return domain.WrapError(domain.ErrCodeConflict, "social login was cancelled", ctx.Err())
			}
		})
		attempt.finish(session, err)
	}()

	return attempt, nil
}

// Logout clears the session and its persisted record. In-flight attempts
// started earlier are discarded. Logging out while already logged out with
// nothing in flight touches neither the store nor the watchers.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	idle := !m.closed && m.current == nil && m.inflight == 0
	m.mu.Unlock()
	if idle {
		return nil
	}

	gen, err := m.begin()
	if err != nil {
		return err
	}
	defer m.end()
	return m.commit(ctx, gen, nil, true, nil)
}

// Current returns a copy of the current session.
func (m *Manager) Current() (domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.Session{}, false
	}
	return *m.current, true
}

// Authorization recomputes the flags from the current session.
func (m *Manager) Authorization() domain.AuthorizationView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.Authorize(m.current)
}

// Watch returns a channel that always holds the latest authorization view.
// Intermediate views may be coalesced. The channel is closed by the returned
// stop func or by Teardown.
func (m *Manager) Watch() (<-chan domain.AuthorizationView, func()) {
	ch := make(chan domain.AuthorizationView, 1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	m.watcherID++
	id := m.watcherID
	m.watchers[id] = ch
	ch <- domain.Authorize(m.current)

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if w, ok := m.watchers[id]; ok {
			delete(m.watchers, id)
			close(w)
		}
	}
}

// Teardown cancels in-flight attempts and rejects further mutations. It waits
// for background handshakes to exit or ctx to expire.
func (m *Manager) Teardown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.cancel()
	for id, ch := range m.watchers {
		delete(m.watchers, id)
		close(ch)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	identity, matched, err := m.operator.Authenticate(email, password)
	if matched {
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "operator login failed", err)
		}
		return identity, nil
	}
	if m.operator.Reserved(email) {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err = m.directory.Authenticate(ctx, email, password)
	if err != nil {
		return nil, classify(ctx, err, domain.ErrInvalidCredentials.Message)
	}
	return identity, nil
}

func (m *Manager) establish(ctx context.Context, gen uint64, identity *domain.Identity, via string, abandoned func() error) (*domain.Session, error) {
	session := identity.Session()
	if err := session.Validate(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "identity service returned an incomplete identity", err)
	}
	if err := m.commit(ctx, gen, session, true, abandoned); err != nil {
		if errors.Is(err, domain.ErrSuperseded) {
			m.logger.Info("discarding superseded login", zap.String("via", via), zap.Uint64("generation", gen))
		}
		return nil, err
	}
	m.logger.Info("session established",
		zap.String("via", via),
		zap.String("session_id", session.ID),
		zap.String("role", string(session.Role)))
	copied := *session
	return &copied, nil
}

func (m *Manager) begin() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, domain.ErrManagerClosed
	}
	m.issued++
	m.inflight++
	return m.issued, nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.inflight--
	m.mu.Unlock()
}

// commit replaces the current session. When persist is set the store is
// written first; a failed write leaves memory untouched except on logout,
// which always clears memory. A non-nil abandoned func vetoes the commit
// when it returns an error. Store calls are bounded by the identity timeout
// so a stalled store cannot hold the lock indefinitely.
func (m *Manager) commit(ctx context.Context, gen uint64, session *domain.Session, persist bool, abandoned func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrManagerClosed
	}
	if gen <= m.committed {
		return domain.ErrSuperseded
	}
	if abandoned != nil {
		if err := abandoned(); err != nil {
			return err
		}
	}

	var storeErr error
	if persist {
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		if session != nil {
			if err := m.sessions.Save(storeCtx, session); err != nil {
				return domain.WrapError(domain.ErrCodeInternal, "failed to persist session", err)
			}
		} else if err := m.sessions.Delete(storeCtx); err != nil {
			m.logger.Error("failed to delete persisted session", zap.Error(err))
			storeErr = domain.WrapError(domain.ErrCodeInternal, "failed to delete persisted session", err)
		}
	}

	m.current = session
	m.committed = gen
	m.notifyLocked()
	return storeErr
}

func (m *Manager) notifyLocked() {
	view := domain.Authorize(m.current)
	for _, ch := range m.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

// attemptContext bounds a collaborator call by the identity timeout and
// cancels it on teardown.
func (m *Manager) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	stop := context.AfterFunc(m.baseCtx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// classify keeps validation errors and folds everything else into an
// authentication failure with a user-facing message.
func classify(ctx context.Context, err error, message string) error {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeInvalid),
		domain.IsDomainError(err, domain.ErrCodeUnauthorized),
		domain.IsDomainError(err, domain.ErrCodeConflict):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.WrapError(domain.ErrCodeUnauthorized, "identity service timed out", err)
	default:
		return domain.WrapError(domain.ErrCodeUnauthorized, message, err)
	}
}
