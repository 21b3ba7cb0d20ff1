package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"economic/client"
	"economic/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.February, 20, 12, 0, 0, 0, time.UTC)

type call struct {
	method string
	path   string
	auth   string
	body   string
}

// fakeAPI is an in-memory stand in for the REST backend.
type fakeAPI struct {
	mu         sync.Mutex
	calls      []call
	income     []client.Record
	expense    []client.Record
	categories []client.Category
	me         client.User
	users      []client.User
	fail       map[string]int
	reply      string
	token      string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		income: []client.Record{
			{ID: "i-1", Amount: "100.00", Category: client.Category{ID: "c-1", Name: "Løn", Type: client.TypeIncome}, Description: "salary", Date: "2024-01-15"},
			{ID: "i-2", Amount: "50.00", Category: client.Category{ID: "c-1", Name: "Løn", Type: client.TypeIncome}, Description: "bonus", Date: "2024-02-10"},
		},
		expense: []client.Record{
			{ID: "e-1", Amount: "30.00", Category: client.Category{ID: "c-2", Name: "Bolig", Type: client.TypeExpense}, Description: "rent", Date: "2024-02-01"},
			{ID: "e-2", Amount: "12.50", Category: client.Category{ID: "c-3", Name: "Mad", Type: client.TypeExpense}, Description: "lunch", Date: "2024-02-03"},
		},
		categories: []client.Category{
			{ID: "c-1", Name: "Løn", Type: client.TypeIncome},
			{ID: "c-2", Name: "Bolig", Type: client.TypeExpense},
			{ID: "c-3", Name: "Mad", Type: client.TypeExpense},
		},
		me:    client.User{ID: "u-1", Email: "jane@example.com", FirstName: "Jane", Roles: []string{client.RoleUser}},
		users: []client.User{{ID: "u-1", Email: "jane@example.com", Roles: []string{client.RoleUser}}, {ID: "u-2", Email: "bob@example.com", Roles: []string{client.RoleUser}}},
		fail:  map[string]int{},
		reply: "Cut down on Mad.",
	}
}

func (f *fakeAPI) callsTo(method, path string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: string(b)})
	status, failing := f.fail[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if failing {
		writeJSON(w, status, map[string]interface{}{"statusCode": status, "message": http.StatusText(status)})
		return
	}

	key := r.Method + " " + r.URL.Path
	switch {
	case key == "POST /auth/login":
		var req struct{ Email, Password string }
		_ = json.Unmarshal(b, &req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"statusCode": 401, "message": "401 Unauthorized: invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": f.token})
	case key == "POST /auth/register":
		writeJSON(w, http.StatusCreated, map[string]string{"access_token": f.token})
	case key == "GET /users/profile":
		writeJSON(w, http.StatusOK, f.me)
	case key == "PATCH /users/update-profile":
		writeJSON(w, http.StatusOK, f.me)
	case key == "GET /users":
		writeJSON(w, http.StatusOK, f.users)
	case strings.HasPrefix(key, "PATCH /auth/admin/update-user-roles/"):
		var req struct{ Roles []string }
		_ = json.Unmarshal(b, &req)
		u := f.users[1]
		u.Roles = req.Roles
		writeJSON(w, http.StatusOK, u)
	case key == "GET /income/me":
		f.mu.Lock()
		list := append([]client.Record{}, f.income...)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, list)
	case key == "GET /expense/me":
		f.mu.Lock()
		list := append([]client.Record{}, f.expense...)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, list)
	case strings.HasPrefix(key, "GET /income/"), strings.HasPrefix(key, "GET /expense/"):
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		for _, rec := range append(append([]client.Record{}, f.income...), f.expense...) {
			if rec.ID == id {
				writeJSON(w, http.StatusOK, rec)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"statusCode": 404, "message": "record not found"})
	case r.Method == http.MethodPost && (r.URL.Path == "/income" || r.URL.Path == "/expense"):
		var in client.RecordCreate
		if err := json.Unmarshal(b, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"statusCode": 400, "message": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, f.store(r.URL.Path[1:], in))
	case r.Method == http.MethodPatch, r.Method == http.MethodDelete:
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "x", "deleted": true, "type": client.TypeExpense})
	case key == "GET /category":
		typ := r.URL.Query().Get("type")
		var out []client.Category
		for _, c := range f.categories {
			if typ == "" || c.Type == typ {
				out = append(out, c)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case strings.HasPrefix(key, "GET /category/"):
		writeJSON(w, http.StatusOK, f.categories[1])
	case key == "POST /category":
		writeJSON(w, http.StatusCreated, f.categories[1])
	case key == "POST /ai/completion", key == "POST /ai/contextual-completion":
		writeJSON(w, http.StatusOK, map[string]string{"reply": f.reply})
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"statusCode": 404, "message": "Cannot " + key})
	}
}

// store appends a created record the way the backend renders it: amount as a
// two-decimal string and the category expanded.
func (f *fakeAPI) store(kind string, in client.RecordCreate) client.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := client.Record{
		ID:          fmt.Sprintf("%s-new-%d", kind[:1], len(f.income)+len(f.expense)+1),
		Amount:      strconv.FormatFloat(in.Amount, 'f', 2, 64),
		Category:    client.Category{ID: in.CategoryID},
		Description: in.Description,
		Date:        in.Date,
	}
	for _, c := range f.categories {
		if c.ID == in.CategoryID {
			rec.Category = c
		}
	}
	if kind == client.TypeIncome {
		f.income = append(f.income, rec)
	} else {
		f.expense = append(f.expense, rec)
	}
	return rec
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenWithExpiry(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "email": "jane@example.com", "exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

type harness struct {
	api    *fakeAPI
	url    string
	router *gin.Engine
	token  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	token := tokenWithExpiry(t, testNow.Add(24*time.Hour))
	api.token = token
	cfg := config.DashboardConfig{CookieName: "jwt-token", CookieDays: 7, PageSize: 10}
	d := New(cfg, client.New(srv.URL, nil), WithClock(func() time.Time { return testNow }))
	return &harness{api: api, url: srv.URL, router: d.Router(), token: token}
}

func (h *harness) do(method, target string, form url.Values, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "jwt-token", Value: token})
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) doJSON(target string, body interface{}, token string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "jwt-token", Value: token})
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "jwt-token" {
			return c
		}
	}
	return nil
}
