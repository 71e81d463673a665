// Package session owns the client's authentication state. The store is a
// small state machine (anonymous -> authenticating -> authenticated) with
// observer notification, persisted as a single JSON record so a returning
// user is silently rehydrated at startup. Expected auth failures are
// returned as structured results, never as errors; callers only handle
// errors for genuinely unexpected conditions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"point2point/internal/api"
	"point2point/internal/logging"
	"point2point/internal/types"
)

// State is the store's position in the auth lifecycle.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// recordFile is the fixed name of the persisted session record.
const recordFile = "session.json"

// Gateway is the slice of the API client the store depends on.
type Gateway interface {
	Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error)
	Signup(ctx context.Context, u api.NewUser, password string) (api.AuthResponse, error)
	Logout(ctx context.Context) error
	FindUserByEmail(ctx context.Context, email string) (types.User, error)
	CreateUser(ctx context.Context, u api.NewUser) (types.User, error)
	UpdateProfile(ctx context.Context, profile types.User) (types.User, error)
	UpdateUser(ctx context.Context, userID int64, profile types.User) (types.User, error)
}

// AuthResult is the structured outcome of login, signup, and profile
// updates. Success=false carries a user-presentable message; the form
// layer renders it without any error unwrapping.
type AuthResult struct {
	Success bool
	Error   string
	User    types.User
}

// record is the single persisted session document: the user profile
// snapshot, plus the opaque bearer token when one was issued. Older
// records may carry only one of the two.
type record struct {
	User  *types.User `json:"user,omitempty"`
	Token string      `json:"token,omitempty"`
}

// Store is the process-wide session state owner.
type Store struct {
	gw   Gateway
	path string
	log  *zap.Logger

	mu        sync.RWMutex
	state     State
	user      types.User
	token     string
	observers map[int]func(State)
	nextObs   int
}

// Open creates the store and attempts silent rehydration from the record
// persisted under dir. A corrupted record is removed and the store starts
// anonymous.
func Open(dir string, gw Gateway) *Store {
	s := &Store{
		gw:        gw,
		path:      filepath.Join(dir, recordFile),
		log:       logging.Named("session"),
		state:     StateAnonymous,
		observers: map[int]func(State){},
	}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Warn("stored session unreadable, clearing", zap.Error(err))
		_ = os.Remove(s.path)
		return
	}

	switch {
	case rec.Token != "":
		user, expiry, err := identityFromToken(rec.Token)
		if err != nil {
			s.log.Warn("stored token unreadable, clearing", zap.Error(err))
			_ = os.Remove(s.path)
			return
		}
		if !expiry.IsZero() && time.Now().After(expiry) {
			s.log.Info("stored token expired, clearing")
			_ = os.Remove(s.path)
			return
		}
		// The persisted snapshot is richer than the token claims and
		// carries any profile edits made after sign-in.
		if rec.User != nil {
			user = *rec.User
		}
		s.token = rec.Token
		s.user = user
		s.state = StateAuthenticated
	case rec.User != nil:
		s.user = *rec.User
		s.state = StateAuthenticated
	default:
		_ = os.Remove(s.path)
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.state == StateAuthenticated
}

// Token returns the bearer token for outgoing requests, or "" when the
// session is anonymous or user-record based. Satisfies api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers an observer invoked on every state transition. The
// returned function removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// setState transitions and notifies observers outside the lock.
func (s *Store) setState(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	obs := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	s.mu.Unlock()
	for _, fn := range obs {
		fn(next)
	}
}

// Login authenticates with the auth service, falling back to the user
// service's find-by-email lookup when the auth endpoints are unavailable.
// Expected failures come back as AuthResult, never as a raised error.
func (s *Store) Login(ctx context.Context, email, password string) AuthResult {
	s.setState(StateAuthenticating)

	resp, err := s.gw.Login(ctx, api.Credentials{Email: email, Password: password})
	if err == nil {
		s.establish(resp.User, resp.Token)
		return AuthResult{Success: true, User: resp.User}
	}
	if !routedAround(err) {
		s.setState(StateAnonymous)
		return AuthResult{Success: false, Error: loginErrorMessage(err)}
	}

	// Auth service unavailable: the composite's user lookup is the
	// fallback identity check.
	user, err := s.gw.FindUserByEmail(ctx, email)
	if err != nil {
		s.setState(StateAnonymous)
		if errors.Is(err, api.ErrNotFound) {
			return AuthResult{Success: false, Error: "User not found. Please sign up first."}
		}
		return AuthResult{Success: false, Error: loginErrorMessage(err)}
	}
	if user.ID == 0 {
		s.setState(StateAnonymous)
		return AuthResult{Success: false, Error: "User not found. Please sign up first."}
	}

	s.establish(user, "")
	return AuthResult{Success: true, User: user}
}

// Signup registers an account, falling back to direct user creation when
// the auth endpoints are unavailable.
func (s *Store) Signup(ctx context.Context, u api.NewUser, password string) AuthResult {
	s.setState(StateAuthenticating)

	resp, err := s.gw.Signup(ctx, u, password)
	if err == nil {
		s.establish(resp.User, resp.Token)
		return AuthResult{Success: true, User: resp.User}
	}
	if !routedAround(err) {
		s.setState(StateAnonymous)
		return AuthResult{Success: false, Error: signupErrorMessage(err)}
	}

	user, err := s.gw.CreateUser(ctx, u)
	if err != nil {
		s.setState(StateAnonymous)
		return AuthResult{Success: false, Error: signupErrorMessage(err)}
	}
	if user.ID == 0 {
		s.setState(StateAnonymous)
		return AuthResult{Success: false, Error: "Failed to create account."}
	}

	s.establish(user, "")
	return AuthResult{Success: true, User: user}
}

// Logout clears the session. The server-side logout is best effort; the
// local record is removed regardless.
func (s *Store) Logout(ctx context.Context) {
	if err := s.gw.Logout(ctx); err != nil {
		s.log.Debug("server logout failed", zap.Error(err))
	}
	s.mu.Lock()
	s.user = types.User{}
	s.token = ""
	s.mu.Unlock()
	_ = os.Remove(s.path)
	s.setState(StateAnonymous)
}

// UpdateProfile mutates the stored user record. Only valid while
// authenticated.
func (s *Store) UpdateProfile(ctx context.Context, profile types.User) AuthResult {
	s.mu.RLock()
	current := s.user
	authed := s.state == StateAuthenticated
	s.mu.RUnlock()
	if !authed {
		return AuthResult{Success: false, Error: "Not signed in."}
	}

	profile.ID = current.ID
	profile.Email = current.Email

	updated, err := s.gw.UpdateProfile(ctx, profile)
	if err != nil && routedAround(err) {
		updated, err = s.gw.UpdateUser(ctx, current.ID, profile)
	}
	if err != nil {
		return AuthResult{Success: false, Error: "Failed to update profile."}
	}
	if updated.ID == 0 {
		updated = profile
	}

	s.mu.Lock()
	s.user = updated
	token := s.token
	s.mu.Unlock()
	s.persist(updated, token)
	return AuthResult{Success: true, User: updated}
}

// establish stores the authenticated identity and persists the session
// record.
func (s *Store) establish(user types.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
	s.persist(user, token)
	s.setState(StateAuthenticated)
}

// persist writes the single session record. The user snapshot is always
// included so profile edits survive a restart even for token sessions,
// where the claims alone would lose the edited fields.
func (s *Store) persist(user types.User, token string) {
	rec := record{User: &user, Token: token}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.log.Warn("session record encode failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.log.Warn("session record write failed", zap.Error(err))
	}
}

// routedAround reports whether an error means the primary endpoint was
// unavailable rather than the request being rejected: the caller should
// try its fallback path.
func routedAround(err error) bool {
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status == 404 || reqErr.Status == 501 || reqErr.Status == 405
	}
	return false
}

func loginErrorMessage(err error) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return "Login failed. Please check your credentials."
}

func signupErrorMessage(err error) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return "Signup failed. Please try again."
}
