package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/api"
	"github.com/go-cinema-client/internal/infrastructure/store"
	pkgtoken "github.com/go-cinema-client/internal/pkg/token"
	"github.com/go-cinema-client/internal/pkg/validate"
)

// fallbackExpiry is used when the authority sends neither expiresIn nor
// a parseable exp claim in the token.
const fallbackExpiry = 7 * 24 * time.Hour

// AuthAPI is the slice of the remote authority the session authority
// depends on.
type AuthAPI interface {
	SignIn(ctx context.Context, req domain.SignInRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*api.AuthResponse, error)
	SignInWithGoogle(ctx context.Context, googleToken string) (*api.AuthResponse, error)
	Refresh(ctx context.Context) (*api.AuthResponse, error)
	Verify(ctx context.Context) (bool, error)
	UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error)
}

// Service owns the credential record and the active identity. It is the
// root of the client engine: collection caches subscribe to its
// login/logout notifications and load or drop their per-user state in
// response.
type Service interface {
	Login(ctx context.Context, req domain.SignInRequest) (*domain.User, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	LoginWithGoogle(ctx context.Context, googleToken string) (*domain.User, error)
	Logout(ctx context.Context)
	// Restore re-establishes identity from the persisted credential. It
	// must be called once at startup, after all subscribers are
	// registered; subscribers are notified synchronously.
	Restore(ctx context.Context)
	Refresh(ctx context.Context) error
	Verify(ctx context.Context) (bool, error)
	UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error)
	// IsTokenExpired checks the current credential's expiry and, when it
	// has passed, performs the full logout side effects.
	IsTokenExpired(ctx context.Context) bool
	// ExpiresSoon reports whether the credential expires within the
	// configured refresh window; callers use it to refresh proactively.
	ExpiresSoon() bool
	CurrentUser() (domain.Credential, bool)
	State() domain.SessionState
	OnLogin(fn func(userID string))
	OnLogout(fn func())
}

type service struct {
	store         *store.Store
	client        AuthAPI
	refreshWindow time.Duration
	log           *slog.Logger

	mu         sync.Mutex
	state      domain.SessionState
	cred       *domain.Credential
	loginSubs  []func(userID string)
	logoutSubs []func()
}

func NewService(st *store.Store, client AuthAPI, refreshWindow time.Duration, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{
		store:         st,
		client:        client,
		refreshWindow: refreshWindow,
		log:           log,
		state:         domain.StateAnonymous,
	}
}

// OnLogin registers a login subscriber. Subscribers run in registration
// order; a panic in one is caught and logged, never blocking the rest.
func (s *service) OnLogin(fn func(userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginSubs = append(s.loginSubs, fn)
}

// OnLogout registers a logout subscriber with the same isolation policy.
func (s *service) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutSubs = append(s.logoutSubs, fn)
}

func (s *service) Login(ctx context.Context, req domain.SignInRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	s.setState(domain.StateAuthenticating)
	resp, err := s.client.SignIn(ctx, req)
	if err != nil {
		s.setState(domain.StateAnonymous)
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s.completeLogin(ctx, resp), nil
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	s.setState(domain.StateAuthenticating)
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.setState(domain.StateAnonymous)
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.completeLogin(ctx, resp), nil
}

func (s *service) LoginWithGoogle(ctx context.Context, googleToken string) (*domain.User, error) {
	if googleToken == "" {
		return nil, fmt.Errorf("google token required: %w", domain.ErrBadRequest)
	}
	s.setState(domain.StateAuthenticating)
	resp, err := s.client.SignInWithGoogle(ctx, googleToken)
	if err != nil {
		s.setState(domain.StateAnonymous)
		return nil, fmt.Errorf("google sign in: %w", err)
	}
	return s.completeLogin(ctx, resp), nil
}

// completeLogin persists the credential into both tiers, flips to
// Authenticated and notifies login subscribers.
func (s *service) completeLogin(ctx context.Context, resp *api.AuthResponse) *domain.User {
	cred := s.buildCredential(resp)
	s.store.Set(ctx, store.KeyCredential, cred)

	s.mu.Lock()
	s.cred = &cred
	s.state = domain.StateAuthenticated
	s.mu.Unlock()

	s.notifyLogin(cred.UserID)
	u := resp.User
	return &u
}

func (s *service) buildCredential(resp *api.AuthResponse) domain.Credential {
	var expiresAt int64
	switch {
	case resp.ExpiresIn > 0:
		expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).UnixMilli()
	default:
		if exp, err := pkgtoken.ExtractExpiry(resp.Token); err == nil {
			expiresAt = exp.UnixMilli()
		} else {
			s.log.Warn("session: no expiry in auth response, applying fallback", "err", err)
			expiresAt = time.Now().Add(fallbackExpiry).UnixMilli()
		}
	}
	return domain.Credential{
		UserID:      resp.User.UserID,
		DisplayName: resp.User.Name,
		Email:       resp.User.Email,
		Token:       resp.Token,
		ExpiresAt:   expiresAt,
	}
}

// Logout notifies logout subscribers, then clears the credential from
// both tiers. Persisted collection state is left untouched so a later
// login restores it.
func (s *service) Logout(ctx context.Context) {
	s.notifyLogout()
	s.mu.Lock()
	s.cred = nil
	s.state = domain.StateAnonymous
	s.mu.Unlock()
	s.store.ClearAll(ctx, store.KeyCredential)
}

func (s *service) Restore(ctx context.Context) {
	s.mu.Lock()
	if s.state == domain.StateAuthenticated && s.cred != nil && !s.cred.Expired(time.Now()) {
		// Restoring while already authenticated with a live credential
		// is a no-op on the credential record.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	var cred domain.Credential
	if !s.store.Get(ctx, store.KeyCredential, &cred) {
		return // nothing persisted, stay anonymous
	}
	if cred.Expired(time.Now()) {
		s.mu.Lock()
		s.state = domain.StateExpired
		s.mu.Unlock()
		s.log.Info("session: stored credential expired, forcing logout", "user_id", cred.UserID)
		s.Logout(ctx)
		return
	}

	// Store.Get already re-seeded the short tier from the durable copy.
	s.mu.Lock()
	s.cred = &cred
	s.state = domain.StateAuthenticated
	s.mu.Unlock()
	s.notifyLogin(cred.UserID)
}

// Refresh re-issues the credential and re-runs the persistence path.
// Login subscribers are re-notified only if the identity changed; a
// refresh for the same user must not trigger redundant cache reloads.
func (s *service) Refresh(ctx context.Context) error {
	resp, err := s.client.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	cred := s.buildCredential(resp)
	s.store.Set(ctx, store.KeyCredential, cred)

	s.mu.Lock()
	prevUserID := ""
	if s.cred != nil {
		prevUserID = s.cred.UserID
	}
	s.cred = &cred
	s.state = domain.StateAuthenticated
	s.mu.Unlock()

	if cred.UserID != prevUserID {
		s.notifyLogin(cred.UserID)
	}
	return nil
}

func (s *service) Verify(ctx context.Context) (bool, error) {
	return s.client.Verify(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	u, err := s.client.UpdateProfile(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// Keep the persisted identity in line with the profile change.
	s.mu.Lock()
	if s.cred != nil {
		s.cred.DisplayName = u.Name
		s.cred.Email = u.Email
		cred := *s.cred
		s.mu.Unlock()
		s.store.Set(ctx, store.KeyCredential, cred)
	} else {
		s.mu.Unlock()
	}
	return u, nil
}

func (s *service) IsTokenExpired(ctx context.Context) bool {
	s.mu.Lock()
	cred := s.cred
	s.mu.Unlock()
	if cred == nil {
		return true
	}
	if !cred.Expired(time.Now()) {
		return false
	}
	s.log.Info("session: credential expired, forcing logout", "user_id", cred.UserID)
	s.Logout(ctx)
	return true
}

func (s *service) ExpiresSoon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred != nil && s.cred.ExpiresWithin(time.Now(), s.refreshWindow)
}

func (s *service) CurrentUser() (domain.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return domain.Credential{}, false
	}
	return *s.cred, true
}

func (s *service) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *service) setState(st domain.SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *service) notifyLogin(userID string) {
	s.mu.Lock()
	subs := append([]func(string){}, s.loginSubs...)
	s.mu.Unlock()
	for i, fn := range subs {
		s.invoke(fmt.Sprintf("login subscriber %d", i), func() { fn(userID) })
	}
}

func (s *service) notifyLogout() {
	s.mu.Lock()
	subs := append([]func(){}, s.logoutSubs...)
	s.mu.Unlock()
	for i, fn := range subs {
		s.invoke(fmt.Sprintf("logout subscriber %d", i), fn)
	}
}

// invoke runs one subscriber with panic isolation so a broken subscriber
// cannot abort the notification fan-out or the auth flow itself.
func (s *service) invoke(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("session: subscriber panicked", "subscriber", name, "panic", r)
		}
	}()
	fn()
}
