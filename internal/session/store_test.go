package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"point2point/internal/api"
	"point2point/internal/types"
)

// fakeGateway scripts the store's backend interactions.
type fakeGateway struct {
	loginResp  api.AuthResponse
	loginErr   error
	signupResp api.AuthResponse
	signupErr  error

	users map[string]types.User

	createErr  error
	updateErr  error
	profileErr error

	findCalls   int
	createCalls int
}

func (f *fakeGateway) Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeGateway) Signup(ctx context.Context, u api.NewUser, password string) (api.AuthResponse, error) {
	return f.signupResp, f.signupErr
}

func (f *fakeGateway) Logout(ctx context.Context) error { return nil }

func (f *fakeGateway) FindUserByEmail(ctx context.Context, email string) (types.User, error) {
	f.findCalls++
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return types.User{}, &api.RequestError{Status: http.StatusNotFound, Message: "user not found"}
}

func (f *fakeGateway) CreateUser(ctx context.Context, u api.NewUser) (types.User, error) {
	f.createCalls++
	if f.createErr != nil {
		return types.User{}, f.createErr
	}
	return types.User{ID: 42, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}, nil
}

func (f *fakeGateway) UpdateProfile(ctx context.Context, profile types.User) (types.User, error) {
	if f.profileErr != nil {
		return types.User{}, f.profileErr
	}
	return profile, nil
}

func (f *fakeGateway) UpdateUser(ctx context.Context, userID int64, profile types.User) (types.User, error) {
	if f.updateErr != nil {
		return types.User{}, f.updateErr
	}
	profile.ID = userID
	return profile, nil
}

// authUnavailable makes the /auth/* endpoints look absent so the store
// takes its fallback paths.
func authUnavailable() error {
	return &api.RequestError{Status: http.StatusNotFound, Message: "no such endpoint"}
}

func TestOpenStartsAnonymous(t *testing.T) {
	s := Open(t.TempDir(), &fakeGateway{})
	if s.State() != StateAnonymous {
		t.Fatalf("expected anonymous start, got %s", s.State())
	}
	if s.IsAuthenticated() {
		t.Fatalf("fresh store must not be authenticated")
	}
}

func TestLoginViaAuthService(t *testing.T) {
	gw := &fakeGateway{
		loginResp: api.AuthResponse{Token: "", User: types.User{ID: 7, Email: "ada@columbia.edu"}},
	}
	s := Open(t.TempDir(), gw)

	res := s.Login(context.Background(), "ada@columbia.edu", "pw")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if s.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", s.State())
	}
	if gw.findCalls != 0 {
		t.Fatalf("fallback lookup must not run when auth succeeds")
	}
}

func TestLoginFallsBackToUserLookup(t *testing.T) {
	gw := &fakeGateway{
		loginErr: authUnavailable(),
		users: map[string]types.User{
			"ada@columbia.edu": {ID: 7, Email: "ada@columbia.edu", FirstName: "Ada"},
		},
	}
	s := Open(t.TempDir(), gw)

	res := s.Login(context.Background(), "ada@columbia.edu", "pw")
	if !res.Success {
		t.Fatalf("expected fallback login success, got %q", res.Error)
	}
	if gw.findCalls != 1 {
		t.Fatalf("expected one lookup call, got %d", gw.findCalls)
	}
	if u, ok := s.CurrentUser(); !ok || u.ID != 7 {
		t.Fatalf("current user not established: %+v ok=%v", u, ok)
	}
}

func TestLoginUnknownUserStructuredResult(t *testing.T) {
	gw := &fakeGateway{loginErr: authUnavailable(), users: map[string]types.User{}}
	s := Open(t.TempDir(), gw)

	res := s.Login(context.Background(), "nobody@columbia.edu", "pw")
	if res.Success {
		t.Fatalf("expected failure for unknown user")
	}
	if res.Error != "User not found. Please sign up first." {
		t.Fatalf("unexpected error message: %q", res.Error)
	}
	if s.State() != StateAnonymous {
		t.Fatalf("failed login must return to anonymous, got %s", s.State())
	}
}

func TestLoginRejectionMessageSurfaced(t *testing.T) {
	gw := &fakeGateway{loginErr: &api.RequestError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}}
	s := Open(t.TempDir(), gw)

	res := s.Login(context.Background(), "ada@columbia.edu", "wrong")
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Error != "Invalid email or password" {
		t.Fatalf("server message lost: %q", res.Error)
	}
	if gw.findCalls != 0 {
		t.Fatalf("401 must not trigger the lookup fallback")
	}
}

func TestSignupFallsBackToCreateUser(t *testing.T) {
	gw := &fakeGateway{signupErr: authUnavailable()}
	s := Open(t.TempDir(), gw)

	res := s.Signup(context.Background(), api.NewUser{Email: "new@columbia.edu", FirstName: "New"}, "pw")
	if !res.Success {
		t.Fatalf("expected signup success, got %q", res.Error)
	}
	if gw.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", gw.createCalls)
	}
	if res.User.ID != 42 {
		t.Fatalf("created user not returned: %+v", res.User)
	}
}

func TestSignupFailure(t *testing.T) {
	gw := &fakeGateway{signupErr: authUnavailable(), createErr: &api.NetworkError{URL: "x", Err: errors.New("refused")}}
	s := Open(t.TempDir(), gw)

	res := s.Signup(context.Background(), api.NewUser{Email: "new@columbia.edu"}, "pw")
	if res.Success {
		t.Fatalf("expected failure")
	}
	if s.State() != StateAnonymous {
		t.Fatalf("failed signup must return to anonymous")
	}
}

func TestSessionPersistsAndRehydrates(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{
		loginResp: api.AuthResponse{User: types.User{ID: 7, Email: "ada@columbia.edu", FirstName: "Ada"}},
	}
	s := Open(dir, gw)
	if res := s.Login(context.Background(), "ada@columbia.edu", "pw"); !res.Success {
		t.Fatalf("login failed: %q", res.Error)
	}

	s2 := Open(dir, gw)
	if s2.State() != StateAuthenticated {
		t.Fatalf("expected rehydrated session, got %s", s2.State())
	}
	if u, _ := s2.CurrentUser(); u.Email != "ada@columbia.edu" {
		t.Fatalf("rehydrated user wrong: %+v", u)
	}
}

func TestCorruptedRecordCleared(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, recordFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupted record: %v", err)
	}

	s := Open(dir, &fakeGateway{})
	if s.State() != StateAnonymous {
		t.Fatalf("corrupted record must yield anonymous, got %s", s.State())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("corrupted record should have been removed")
	}
}

func TestTokenRecordRehydrates(t *testing.T) {
	dir := t.TempDir()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "7",
		"email": "ada@columbia.edu",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	data, _ := json.Marshal(record{Token: signed})
	if err := os.WriteFile(filepath.Join(dir, recordFile), data, 0o600); err != nil {
		t.Fatalf("seed token record: %v", err)
	}

	s := Open(dir, &fakeGateway{})
	if s.State() != StateAuthenticated {
		t.Fatalf("expected token rehydration, got %s", s.State())
	}
	if s.Token() != signed {
		t.Fatalf("token not retained")
	}
	if u, _ := s.CurrentUser(); u.ID != 7 || u.Email != "ada@columbia.edu" {
		t.Fatalf("claims identity wrong: %+v", u)
	}
}

func TestTokenSessionKeepsProfileEditsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "7",
		"email": "ada@columbia.edu",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	gw := &fakeGateway{loginResp: api.AuthResponse{
		Token: signed,
		User:  types.User{ID: 7, Email: "ada@columbia.edu", FirstName: "Ada", HomeArea: "Astoria"},
	}}
	s := Open(dir, gw)
	s.Login(context.Background(), "ada@columbia.edu", "pw")

	result := s.UpdateProfile(context.Background(), types.User{
		FirstName: "Ada", LastName: "Lovelace", HomeArea: "Jersey City",
	})
	if !result.Success {
		t.Fatalf("profile update failed: %s", result.Error)
	}

	// A fresh store must see the edited fields, not just the claims
	// embedded in the token.
	s2 := Open(dir, &fakeGateway{})
	if s2.Token() != signed {
		t.Fatalf("token not retained across restart")
	}
	u, ok := s2.CurrentUser()
	if !ok {
		t.Fatalf("expected authenticated rehydration")
	}
	if u.HomeArea != "Jersey City" || u.LastName != "Lovelace" {
		t.Fatalf("profile edits lost across restart: %+v", u)
	}
}

func TestExpiredTokenCleared(t *testing.T) {
	dir := t.TempDir()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	data, _ := json.Marshal(record{Token: signed})
	path := filepath.Join(dir, recordFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("seed token record: %v", err)
	}

	s := Open(dir, &fakeGateway{})
	if s.State() != StateAnonymous {
		t.Fatalf("expired token must yield anonymous, got %s", s.State())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expired record should have been removed")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{loginResp: api.AuthResponse{User: types.User{ID: 7, Email: "a@b.c"}}}
	s := Open(dir, gw)
	s.Login(context.Background(), "a@b.c", "pw")

	s.Logout(context.Background())
	if s.State() != StateAnonymous {
		t.Fatalf("expected anonymous after logout")
	}
	if _, err := os.Stat(filepath.Join(dir, recordFile)); !os.IsNotExist(err) {
		t.Fatalf("session record should be removed on logout")
	}
	if _, ok := s.CurrentUser(); ok {
		t.Fatalf("user should be cleared on logout")
	}
}

func TestObserverNotified(t *testing.T) {
	gw := &fakeGateway{loginResp: api.AuthResponse{User: types.User{ID: 7}}}
	s := Open(t.TempDir(), gw)

	var seen []State
	unsub := s.Subscribe(func(st State) { seen = append(seen, st) })

	s.Login(context.Background(), "a@b.c", "pw")
	if len(seen) != 2 || seen[0] != StateAuthenticating || seen[1] != StateAuthenticated {
		t.Fatalf("unexpected transition sequence: %v", seen)
	}

	unsub()
	s.Logout(context.Background())
	if len(seen) != 2 {
		t.Fatalf("observer fired after unsubscribe: %v", seen)
	}
}

func TestUpdateProfileRequiresAuth(t *testing.T) {
	s := Open(t.TempDir(), &fakeGateway{})
	res := s.UpdateProfile(context.Background(), types.User{FirstName: "X"})
	if res.Success {
		t.Fatalf("profile update must fail while anonymous")
	}
}

func TestUpdateProfilePersists(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{loginResp: api.AuthResponse{User: types.User{ID: 7, Email: "a@b.c", FirstName: "Ada"}}}
	s := Open(dir, gw)
	s.Login(context.Background(), "a@b.c", "pw")

	res := s.UpdateProfile(context.Background(), types.User{FirstName: "Grace", LastName: "Hopper", HomeArea: "Astoria"})
	if !res.Success {
		t.Fatalf("update failed: %q", res.Error)
	}
	if res.User.Email != "a@b.c" || res.User.ID != 7 {
		t.Fatalf("identity fields must be preserved: %+v", res.User)
	}

	s2 := Open(dir, gw)
	if u, _ := s2.CurrentUser(); u.FirstName != "Grace" {
		t.Fatalf("updated profile not persisted: %+v", u)
	}
}

func TestUpdateProfileFallsBackToUserService(t *testing.T) {
	gw := &fakeGateway{
		loginResp:  api.AuthResponse{User: types.User{ID: 7, Email: "a@b.c"}},
		profileErr: authUnavailable(),
	}
	s := Open(t.TempDir(), gw)
	s.Login(context.Background(), "a@b.c", "pw")

	res := s.UpdateProfile(context.Background(), types.User{FirstName: "Grace"})
	if !res.Success {
		t.Fatalf("fallback update failed: %q", res.Error)
	}
	if res.User.ID != 7 {
		t.Fatalf("fallback update lost identity: %+v", res.User)
	}
}
