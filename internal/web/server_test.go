package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/appstate"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/testutil"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type fakeAuth struct {
	mu      sync.Mutex
	access  map[string]session.User
	refresh map[string]session.User
	n       int

	SignInErr  error
	SignUpErr  error
	ConfirmErr error
	Redirect   string
	SignUps    []string
	SignedOut  []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		access:  make(map[string]session.User),
		refresh: make(map[string]session.User),
	}
}

// issue mints a token pair. Caller holds f.mu.
func (f *fakeAuth) issue(u session.User) *session.Tokens {
	f.n++
	t := &session.Tokens{
		AccessToken:      fmt.Sprintf("access-%d", f.n),
		RefreshToken:     fmt.Sprintf("refresh-%d", f.n),
		AccessExpiresAt:  time.Now().Add(time.Hour),
		RefreshExpiresAt: time.Now().Add(24 * time.Hour),
		User:             u,
	}
	f.access[t.AccessToken] = u
	f.refresh[t.RefreshToken] = u
	return t
}

func (f *fakeAuth) Verify(token string) (session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.access[token]
	if !ok {
		return session.User{}, errors.New("invalid or expired token")
	}
	return u, nil
}

func (f *fakeAuth) Refresh(ctx context.Context, token string) (*session.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.refresh[token]
	if !ok {
		return nil, errors.New("invalid or expired token")
	}
	delete(f.refresh, token)
	return f.issue(u), nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*session.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	return f.issue(session.User{ID: uuid.New(), Email: email, SessionID: uuid.New()}), nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password, redirectURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignUps = append(f.SignUps, redirectURL)
	return f.SignUpErr
}

func (f *fakeAuth) ConfirmEmail(ctx context.Context, token string) (string, error) {
	if f.ConfirmErr != nil {
		return "", f.ConfirmErr
	}
	return f.Redirect, nil
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignedOut = append(f.SignedOut, token)
	delete(f.refresh, token)
	return nil
}

// expireAccess forgets every access token, as if they had all expired.
func (f *fakeAuth) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = make(map[string]session.User)
}

type harness struct {
	app   *fiber.App
	auth  *fakeAuth
	state *appstate.Container
	lists *testutil.FakeLists
	tasks *testutil.FakeTasks
	jar   map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		app:   fiber.New(),
		auth:  newFakeAuth(),
		lists: testutil.NewFakeLists(),
		tasks: testutil.NewFakeTasks(),
		jar:   make(map[string]string),
	}
	h.state = appstate.NewContainer(viewmodel.Repositories{
		Lists:    h.lists,
		Tasks:    h.tasks,
		Profiles: testutil.NewFakeProfiles(),
	}, 0)

	srv, err := NewServer(ServerConfig{Auth: h.auth, State: h.state, PasswordMinLength: 6})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv.Register(h.app)
	return h
}

// do sends a request carrying the harness cookies and stores any cookies the
// response sets.
func (h *harness) do(t *testing.T, method, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range h.jar {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := h.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 {
			delete(h.jar, ck.Name)
			continue
		}
		h.jar[ck.Name] = ck.Value
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(data)
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	resp, _ := h.do(t, http.MethodPost, "/auth/signin", url.Values{"email": {"mum@example.com"}, "password": {"secret1"}})
	if resp.StatusCode != fiber.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect home after sign-in, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func expectRedirect(t *testing.T, resp *http.Response, to string) {
	t.Helper()
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != to {
		t.Fatalf("expected redirect to %q, got %q", to, got)
	}
}

func TestHomeRedirectsAnonymousToSignIn(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodGet, "/", nil)
	expectRedirect(t, resp, "/auth")
}

func TestAuthPageSetsDocumentMetadata(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/auth", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<title>"+authTitle+"</title>") {
		t.Errorf("expected auth title in page")
	}
	if !strings.Contains(body, `content="`+authDescription+`"`) {
		t.Errorf("expected auth description meta in page")
	}
}

func TestSignInWelcomesAndRendersLists(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	resp, body := h.do(t, http.MethodGet, "/", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<title>"+mainTitle+"</title>") {
		t.Error("expected main title")
	}
	if !strings.Contains(body, `content="`+mainDescription+`"`) {
		t.Error("expected main description meta")
	}
	if !strings.Contains(body, "Welcome back!") {
		t.Error("expected welcome toast")
	}
	if !strings.Contains(body, "No lists yet. Create one above.") {
		t.Error("expected empty lists hint")
	}

	_, body = h.do(t, http.MethodGet, "/", nil)
	if strings.Contains(body, "Welcome back!") {
		t.Error("expected toast shown only once")
	}
}

func TestSignedInUserIsSentAwayFromSignIn(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	resp, _ := h.do(t, http.MethodGet, "/auth", nil)
	expectRedirect(t, resp, "/")
}

func TestSignInFailureShowsToastOnce(t *testing.T) {
	h := newHarness(t)
	h.auth.SignInErr = errors.New("Invalid login credentials")

	resp, _ := h.do(t, http.MethodPost, "/auth/signin", url.Values{"email": {"mum@example.com"}, "password": {"nope"}})
	if resp.StatusCode != fiber.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/auth?") {
		t.Fatalf("expected redirect back to sign-in, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	_, body := h.do(t, http.MethodGet, resp.Header.Get("Location"), nil)
	if !strings.Contains(body, "Sign in failed") || !strings.Contains(body, "Invalid login credentials") {
		t.Errorf("expected sign-in failure toast, got %s", body)
	}
	if !strings.Contains(body, `value="mum@example.com"`) {
		t.Error("expected email field kept")
	}

	_, body = h.do(t, http.MethodGet, "/auth", nil)
	if strings.Contains(body, "Sign in failed") {
		t.Error("expected flash cleared after display")
	}
}

func TestSignUpSendsOriginRedirectAndDoesNotSignIn(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPost, "/auth/signup", url.Values{"email": {"kid@example.com"}, "password": {"secret1"}})
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if len(h.auth.SignUps) != 1 || h.auth.SignUps[0] != "http://example.com/" {
		t.Errorf("expected redirect URL http://example.com/, got %v", h.auth.SignUps)
	}
	if _, ok := h.jar[session.AccessCookie]; ok {
		t.Error("expected no session cookie after sign-up")
	}

	_, body := h.do(t, http.MethodGet, resp.Header.Get("Location"), nil)
	if !strings.Contains(body, "Check your email") {
		t.Error("expected check-your-email toast")
	}
}

func TestSignUpFailureToast(t *testing.T) {
	h := newHarness(t)
	h.auth.SignUpErr = errors.New("email already registered")

	resp, _ := h.do(t, http.MethodPost, "/auth/signup", url.Values{"email": {"kid@example.com"}, "password": {"secret1"}})
	_, body := h.do(t, http.MethodGet, resp.Header.Get("Location"), nil)
	if !strings.Contains(body, "Sign up failed") || !strings.Contains(body, "email already registered") {
		t.Errorf("expected sign-up failure toast, got %s", body)
	}
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	oldRefresh := h.jar[session.RefreshCookie]

	h.auth.expireAccess()
	resp, _ := h.do(t, http.MethodGet, "/", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 after refresh, got %d", resp.StatusCode)
	}
	if h.jar[session.RefreshCookie] == oldRefresh {
		t.Error("expected refresh cookie rotated")
	}
}

func TestRejectedRefreshClearsCookies(t *testing.T) {
	h := newHarness(t)
	h.jar[session.AccessCookie] = "stale"
	h.jar[session.RefreshCookie] = "revoked"

	resp, _ := h.do(t, http.MethodGet, "/", nil)
	expectRedirect(t, resp, "/auth")
	if len(h.jar) != 0 {
		t.Errorf("expected cookies cleared, got %v", h.jar)
	}
}

func TestLogoutRevokesAndClears(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	refresh := h.jar[session.RefreshCookie]

	resp, _ := h.do(t, http.MethodPost, "/logout", nil)
	expectRedirect(t, resp, "/auth")
	if len(h.auth.SignedOut) != 1 || h.auth.SignedOut[0] != refresh {
		t.Errorf("expected refresh token revoked, got %v", h.auth.SignedOut)
	}
	if _, ok := h.jar[session.AccessCookie]; ok {
		t.Error("expected access cookie cleared")
	}
}

func TestAddListAndTaskThroughForms(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	resp, _ := h.do(t, http.MethodPost, "/lists", url.Values{"title": {"Groceries"}})
	expectRedirect(t, resp, "/")
	resp, _ = h.do(t, http.MethodPost, "/tasks", url.Values{"title": {"Milk"}})
	expectRedirect(t, resp, "/")

	_, body := h.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(body, "Groceries") || !strings.Contains(body, "Milk") {
		t.Errorf("expected list and task rendered, got %s", body)
	}
	if !strings.Contains(body, "Added by You") {
		t.Error("expected attribution for own task")
	}
}

func TestFormTitlesSurviveLaterRequests(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.do(t, http.MethodPost, "/lists", url.Values{"title": {"Groceries"}})
	for i := 0; i < 5; i++ {
		h.do(t, http.MethodPost, "/lists", url.Values{"title": {"ZZZZZZZZZ"}})
	}

	if got := h.lists.All()[0].Title; got != "Groceries" {
		t.Errorf("expected stored title %q, got %q", "Groceries", got)
	}
	_, body := h.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(body, "Groceries") {
		t.Error("expected first list still rendered as Groceries")
	}
}

func TestHomeReloadShowsOtherMembersChanges(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.do(t, http.MethodPost, "/lists", url.Values{"title": {"Groceries"}})
	h.do(t, http.MethodGet, "/", nil)

	dad := uuid.New()
	h.lists.Seed(dad, "Dad's chores")
	h.tasks.Seed(h.lists.All()[0].ID, dad, "Bread")

	_, body := h.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(body, "Dad&#39;s chores") {
		t.Error("expected list added by another member after reload")
	}
	if !strings.Contains(body, "Bread") {
		t.Error("expected task added by another member after reload")
	}
}

func TestBlankListTitleIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.do(t, http.MethodPost, "/lists", url.Values{"title": {"   "}})
	if h.lists.Calls.Insert != 0 {
		t.Errorf("expected no insert, got %d", h.lists.Calls.Insert)
	}
}

func TestRenameDialogFlow(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.do(t, http.MethodPost, "/lists", url.Values{"title": {"Groceries"}})
	id := h.lists.All()[0].ID.String()

	h.do(t, http.MethodPost, "/dialogs/rename/"+id, nil)
	_, body := h.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(body, "Rename list") || !strings.Contains(body, `value="Groceries"`) {
		t.Fatalf("expected open rename dialog seeded with title, got %s", body)
	}

	resp, _ := h.do(t, http.MethodPost, "/lists/"+id+"/rename", url.Values{"title": {" Weekly shop "}})
	expectRedirect(t, resp, "/")
	if got := h.lists.All()[0].Title; got != "Weekly shop" {
		t.Errorf("expected renamed list, got %q", got)
	}

	_, body = h.do(t, http.MethodGet, "/", nil)
	if strings.Contains(body, "Rename list") {
		t.Error("expected dialog closed after save")
	}
}

func TestEditDialogMalformedDueDateToasts(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.do(t, http.MethodPost, "/lists", url.Values{"title": {"Groceries"}})
	h.do(t, http.MethodPost, "/tasks", url.Values{"title": {"Milk"}})

	tasks, _ := h.tasks.Select(context.Background(), repository.TaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	taskID := tasks[0].ID.String()

	h.do(t, http.MethodPost, "/dialogs/edit/"+taskID, nil)
	h.do(t, http.MethodPost, "/tasks/"+taskID+"/edit", url.Values{"title": {"Milk"}, "due_date": {"someday"}})

	_, body := h.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(body, viewmodel.ActionEditTask) {
		t.Errorf("expected save failure toast, got %s", body)
	}
	if !strings.Contains(body, "Edit task") {
		t.Error("expected dialog kept open")
	}
}

func TestFailedLoadShowsToast(t *testing.T) {
	h := newHarness(t)
	h.lists.SelectErr = errors.New("connection refused")
	h.signIn(t)

	_, body := h.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(body, viewmodel.ActionLoadLists) || !strings.Contains(body, "connection refused") {
		t.Errorf("expected load failure toast, got %s", body)
	}
}

func TestConfirmRedirectStaysLocal(t *testing.T) {
	h := newHarness(t)
	h.auth.Redirect = "https://evil.example/"

	resp, _ := h.do(t, http.MethodGet, "/auth/confirm?token=abc", nil)
	expectRedirect(t, resp, "/")
}

func TestLocalRedirect(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"http://example.com/", "/"},
		{"http://example.com/lists?x=1", "/lists?x=1"},
		{"/", "/"},
		{"//evil.example/", "/"},
		{"https://evil.example/", "/"},
		{"javascript:alert(1)", "/"},
		{"", "/"},
	}

	for _, tt := range tests {
		if got := localRedirect(tt.raw, "example.com"); got != tt.want {
			t.Errorf("localRedirect(%q) = %q, expected %q", tt.raw, got, tt.want)
		}
	}
}
