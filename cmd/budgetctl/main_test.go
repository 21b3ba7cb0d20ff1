package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"economic/client"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type backend struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []call
	token  string
	status map[string]int
	income []client.Record
	spend  []client.Record
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	today := time.Now().Format(client.DateLayout)
	b := &backend{
		t:      t,
		token:  signed(t, time.Now().Add(time.Hour)),
		status: map[string]int{},
		income: []client.Record{
			{ID: "i1", Amount: "150", Category: client.Category{ID: "c1", Name: "Salary", Type: "income"}, Date: today},
		},
		spend: []client.Record{
			{ID: "e1", Amount: "40.5", Category: client.Category{ID: "c2", Name: "Food", Type: "expense"}, Description: "lunch", Date: today},
			{ID: "e2", Amount: "9.5", Category: client.Category{ID: "c2", Name: "Food", Type: "expense"}, Date: today},
		},
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.calls = append(b.calls, call{Method: r.Method, Path: r.URL.RequestURI(), Auth: r.Header.Get("Authorization"), Body: string(body)})
	status := b.status[key]
	b.mu.Unlock()

	if status != 0 {
		reply(w, status, map[string]interface{}{"statusCode": status, "message": http.StatusText(status)})
		return
	}
	switch key {
	case "POST /auth/login", "POST /auth/register":
		reply(w, http.StatusOK, map[string]string{"access_token": b.token})
	case "GET /users/profile":
		reply(w, http.StatusOK, client.User{ID: "u-1", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", Roles: []string{"user"}})
	case "GET /income/me":
		reply(w, http.StatusOK, b.income)
	case "GET /expense/me":
		reply(w, http.StatusOK, b.spend)
	case "POST /expense":
		reply(w, http.StatusCreated, client.Record{ID: "e9"})
	case "GET /income/export":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte("id,date,category,amount,description\ni1," + b.income[0].Date + ",Salary,150.00,\n"))
	case "DELETE /expense/e1":
		reply(w, http.StatusOK, map[string]interface{}{"id": "e1", "deleted": true})
	case "GET /category":
		reply(w, http.StatusOK, []client.Category{{ID: "c2", Name: "Food", Type: "expense"}})
	case "POST /ai/completion":
		reply(w, http.StatusOK, map[string]string{"reply": "plain answer"})
	case "POST /ai/contextual-completion":
		reply(w, http.StatusOK, map[string]string{"reply": "answer with context"})
	default:
		reply(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func (b *backend) find(method, path string) (call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			return c, true
		}
	}
	return call{}, false
}

func reply(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

type cli struct {
	url       string
	tokenFile string
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newCLI(t *testing.T, srv *httptest.Server) *cli {
	return &cli{
		url:       srv.URL,
		tokenFile: filepath.Join(t.TempDir(), "token"),
		stdout:    new(bytes.Buffer),
		stderr:    new(bytes.Buffer),
	}
}

func (c *cli) run(stdin string, args ...string) error {
	c.stdout.Reset()
	c.stderr.Reset()
	full := append([]string{"-api", c.url, "-token-file", c.tokenFile}, args...)
	return run(full, strings.NewReader(stdin), c.stdout, c.stderr)
}

func (c *cli) login(t *testing.T, token string) {
	t.Helper()
	require.NoError(t, os.WriteFile(c.tokenFile, []byte(token), 0o600))
}

func TestRun_MissingCommand(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)

	err := c.run("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing command")
	assert.Contains(t, c.stderr.String(), "Usage: budgetctl")
}

func TestRun_UnknownCommand(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)

	err := c.run("", "launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "launch"`)
}

func TestLogin_StoresToken(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)

	require.NoError(t, c.run("", "login", "-email", "jane@example.com", "-password", "secret"))
	assert.Contains(t, c.stdout.String(), "Logged in as jane@example.com")

	stored, err := os.ReadFile(c.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, b.token, strings.TrimSpace(string(stored)))

	got, ok := b.find(http.MethodPost, "/auth/login")
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"jane@example.com","password":"secret"}`, got.Body)
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)

	require.NoError(t, c.run("from-stdin\n", "login", "-email", "jane@example.com"))
	got, ok := b.find(http.MethodPost, "/auth/login")
	require.True(t, ok)
	assert.Contains(t, got.Body, `"password":"from-stdin"`)
}

func TestLogin_Errors(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)

	err := c.run("", "login", "-password", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-email")

	err = c.run("", "login", "-email", "jane@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read password")

	b.status["POST /auth/login"] = http.StatusUnauthorized
	err = c.run("", "login", "-email", "jane@example.com", "-password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", err.Error())
	_, statErr := os.Stat(c.tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRegister_ShortPassword(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)

	err := c.run("", "register", "-email", "new@example.com", "-password", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6")
	_, called := b.find(http.MethodPost, "/auth/register")
	assert.False(t, called)

	require.NoError(t, c.run("", "register", "-email", "new@example.com", "-name", "New User", "-password", "secret1"))
	got, ok := b.find(http.MethodPost, "/auth/register")
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"new@example.com","password":"secret1","name":"New User"}`, got.Body)
}

func TestLogout_ClearsToken(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("", "logout"))
	_, err := os.Stat(c.tokenFile)
	assert.True(t, os.IsNotExist(err))

	err = c.run("", "profile")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestExpiredTokenIsCleared(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, signed(t, time.Now().Add(-time.Minute)))

	err := c.run("", "profile")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Contains(t, c.stderr.String(), "session_expired_initial")
	_, statErr := os.Stat(c.tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCorruptTokenIsCleared(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, "garbage")

	err := c.run("", "summary")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Contains(t, c.stderr.String(), "session_corrupt")
}

func TestProfile(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("", "profile"))
	assert.Contains(t, c.stdout.String(), "Jane Doe <jane@example.com>")
	assert.Contains(t, c.stdout.String(), "roles: user")

	got, ok := b.find(http.MethodGet, "/users/profile")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+b.token, got.Auth)
}

func TestSummary(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("", "summary"))
	out := c.stdout.String()
	assert.Contains(t, out, "Overview "+time.Now().Format("2006"))
	assert.Contains(t, out, "150.00")
	assert.Contains(t, out, "50.00")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "Food")

	err := c.run("", "summary", "-month", "13")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month must be 1-12")
}

func TestExpenseList(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("", "expense", "list", "-monthly"))
	out := c.stdout.String()
	assert.Contains(t, out, "lunch")
	assert.Contains(t, out, "40.50")
	assert.Contains(t, out, "page 1/1, 2 records, total 50.00")

	require.NoError(t, c.run("", "expense", "list", "-year", "1999"))
	assert.Contains(t, c.stdout.String(), "1999, page 1/1, 0 records")
}

func TestExpenseAdd(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	err := c.run("", "expense", "add", "-amount", "abc", "-category", "c2")
	assert.ErrorIs(t, err, client.ErrInvalidAmount)

	require.NoError(t, c.run("", "expense", "add", "-amount", "12.5", "-category", "c2", "-description", "coffee", "-date", "2024-02-03"))
	assert.Contains(t, c.stdout.String(), "Created expense e9")
	got, ok := b.find(http.MethodPost, "/expense")
	require.True(t, ok)
	assert.JSONEq(t, `{"amount":12.5,"categoryId":"c2","description":"coffee","date":"2024-02-03"}`, got.Body)
}

func TestExpenseRemove(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("", "expense", "rm", "e1"))
	assert.Contains(t, c.stdout.String(), "Deleted expense e1")

	err := c.run("", "expense", "rm", "e404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not delete")
}

func TestCategoryCommands(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("", "category", "list", "-type", "expense"))
	assert.Contains(t, c.stdout.String(), "Food")
	_, ok := b.find(http.MethodGet, "/category?type=expense")
	assert.True(t, ok)

	err := c.run("", "category", "add", "-name", "Rent", "-type", "other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income or expense")
}

func TestUsersSetRole_Forbidden(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)
	b.status["PATCH /auth/admin/update-user-roles/u-2"] = http.StatusForbidden

	err := c.run("", "users", "set-role", "u-2", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), client.MsgAccessDenied)

	err = c.run("", "users", "set-role", "u-2", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role must be user or admin")
}

func TestChat(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("how am I doing?\n", "chat"))
	assert.Contains(t, c.stdout.String(), "plain answer")

	require.NoError(t, c.run("where does my money go?\n\n", "chat", "-context", "expense"))
	out := c.stdout.String()
	assert.Contains(t, out, "Using 2 expense records as context.")
	assert.Contains(t, out, "answer with context")

	got, ok := b.find(http.MethodPost, "/ai/contextual-completion")
	require.True(t, ok)
	assert.Contains(t, got.Body, `"expenses":[`)
	assert.Contains(t, got.Body, `"name":"Food"`)
	assert.NotContains(t, got.Body, `"income"`)
}

func TestChat_BackendFailure(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)
	b.status["POST /ai/completion"] = http.StatusBadGateway

	require.NoError(t, c.run("hello\n", "chat"))
	assert.Contains(t, c.stdout.String(), chatFailed)

	b.status["POST /ai/completion"] = http.StatusUnauthorized
	err := c.run("hello\n", "chat")
	require.Error(t, err)
	assert.Equal(t, client.MsgLoginAgain, err.Error())
	_, statErr := os.Stat(c.tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestIncomeExport(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)
	c.login(t, b.token)

	require.NoError(t, c.run("", "income", "export", "-start", "2024-01-01", "-end", "2024-03-31"))
	assert.Contains(t, c.stdout.String(), "i1,")
	_, ok := b.find(http.MethodGet, "/income/export?end=2024-03-31&start=2024-01-01")
	assert.True(t, ok)

	out := filepath.Join(t.TempDir(), "income.csv")
	require.NoError(t, c.run("", "income", "export", "-out", out))
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Salary,150.00")
}
