package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"economic/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRequireSession_NoCookie(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard/budget", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireSession_ExpiredCookie(t *testing.T) {
	h := newHarness(t)
	expired := tokenWithExpiry(t, testNow.Add(-time.Minute))

	w := h.do(http.MethodGet, "/dashboard", nil, expired)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?message=session_expired_initial", w.Header().Get("Location"))
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Equal(t, "", c.Value)
	assert.True(t, c.MaxAge < 0)
	assert.Empty(t, h.api.callsTo(http.MethodGet, "/income/me"))
}

func TestRequireSession_CorruptCookie(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard", nil, "garbage")
	assert.Equal(t, "/login?message=session_corrupt", w.Header().Get("Location"))
}

func TestLoginPage_ShowsReason(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/login?message=session_expired_interval", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your session has expired. Please log in again.")
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/login", url.Values{"email": {"jane@example.com"}, "password": {"secret"}}, "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Equal(t, h.token, c.Value)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.True(t, c.HttpOnly)

	w = h.do(http.MethodPost, "/login", url.Values{"email": {"jane@example.com"}, "password": {"wrong"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password.")
	assert.Nil(t, sessionCookie(w))

	w = h.do(http.MethodPost, "/login", url.Values{"email": {""}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/register", url.Values{"email": {"new@example.com"}, "password": {"secret1"}, "confirm": {"other"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match.")
	assert.Empty(t, h.api.callsTo(http.MethodPost, "/auth/register"))

	w = h.do(http.MethodPost, "/register", url.Values{"email": {"new@example.com"}, "name": {"New User"}, "password": {"secret1"}, "confirm": {"secret1"}}, "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	calls := h.api.callsTo(http.MethodPost, "/auth/register")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"email":"new@example.com","password":"secret1","name":"New User"}`, calls[0].body)
}

func TestUnreadableTokenKeepsForm(t *testing.T) {
	h := newHarness(t)
	h.api.token = "not-a-jwt"

	w := h.do(http.MethodPost, "/register", url.Values{"email": {"new@example.com"}, "name": {"New User"}, "password": {"secret1"}, "confirm": {"secret1"}}, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "The server returned an invalid session.")
	assert.Contains(t, w.Body.String(), "Repeat password")
	assert.Contains(t, w.Body.String(), "New User")
	assert.Nil(t, sessionCookie(w))

	w = h.do(http.MethodPost, "/login", url.Values{"email": {"jane@example.com"}, "password": {"secret"}}, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "The server returned an invalid session.")
	assert.NotContains(t, w.Body.String(), "Repeat password")
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/logout", nil, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.True(t, c.MaxAge < 0)

	w = h.do(http.MethodGet, "/logout?reason=session_expired_interval", nil, h.token)
	assert.Equal(t, "/login?message=session_expired_interval", w.Header().Get("Location"))
	w = h.do(http.MethodGet, "/logout?reason=whatever", nil, h.token)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestOverview(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard?year=2024&month=2&view=monthly", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "50.00 kr.")
	assert.Contains(t, body, "42.50 kr.")
	assert.Contains(t, body, "7.50 kr.")

	calls := h.api.callsTo(http.MethodGet, "/income/me")
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer "+h.token, calls[0].auth)
	assert.Len(t, h.api.callsTo(http.MethodGet, "/expense/me"), 1)

	w = h.do(http.MethodGet, "/dashboard?year=2024&view=yearly", nil, h.token)
	assert.Contains(t, w.Body.String(), "150.00 kr.")
	assert.Contains(t, w.Body.String(), "107.50 kr.")
}

func TestBudgetPage_Cards(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard/budget?year=2024&month=2", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "150.00 kr.")
	assert.Contains(t, body, "75.00 kr.")
	assert.Contains(t, body, "bonus")
	assert.NotContains(t, body, "salary")
	assert.NotContains(t, body, `role="alert"`)
	assert.Len(t, h.api.callsTo(http.MethodGet, "/category"), 1)
}

func TestRecordPage_ForbiddenBanner(t *testing.T) {
	h := newHarness(t)
	h.api.fail["GET /expense/me"] = http.StatusForbidden

	w := h.do(http.MethodGet, "/dashboard/spending?year=2024&month=2", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied: you do not have permission to view this page or resource.")
}

func TestRecordPage_UnauthorizedBanner(t *testing.T) {
	h := newHarness(t)
	h.api.fail["GET /income/me"] = http.StatusUnauthorized
	w := h.do(http.MethodGet, "/dashboard/budget", nil, h.token)
	assert.Contains(t, w.Body.String(), "Authentication required. Please log in again.")
}

func TestRecordPage_Create(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/dashboard/spending?year=2024&month=2&view=yearly", url.Values{
		"amount": {"-3"}, "categoryId": {"c-2"}, "date": {"2024-02-05"},
	}, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), client.ErrInvalidAmount.Error())
	assert.Contains(t, w.Body.String(), `class="modal"`)
	assert.Empty(t, h.api.callsTo(http.MethodPost, "/expense"))

	w = h.do(http.MethodPost, "/dashboard/spending?year=2024&month=2&view=yearly", url.Values{
		"amount": {"19.95"}, "categoryId": {"c-3"}, "description": {"pizza"}, "date": {"2024-02-05"},
	}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/dashboard/spending?")
	assert.Contains(t, w.Header().Get("Location"), "view=yearly")
	calls := h.api.callsTo(http.MethodPost, "/expense")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"amount":19.95,"categoryId":"c-3","description":"pizza","date":"2024-02-05"}`, calls[0].body)
}

func TestRecordPage_CreateThenList(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/dashboard/spending?year=2024&month=2", url.Values{
		"amount": {"19.95"}, "categoryId": {"c-3"}, "description": {"pizza"}, "date": {"2024-02-05"},
	}, h.token)
	require.Equal(t, http.StatusSeeOther, w.Code)

	list, err := client.NewExpenseService(client.New(h.url, client.StaticToken(h.token))).ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	created := list[2]
	assert.Equal(t, "19.95", created.Amount)
	assert.Equal(t, 19.95, created.Value())
	assert.Equal(t, client.Category{ID: "c-3", Name: "Mad", Type: client.TypeExpense}, created.Category)
	assert.Equal(t, "pizza", created.Description)
	assert.Equal(t, "2024-02-05", created.Date)

	w = h.do(http.MethodGet, w.Header().Get("Location"), nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pizza")
	assert.Contains(t, w.Body.String(), "19.95 kr.")
}

func TestRecordPage_CreateBackendError(t *testing.T) {
	h := newHarness(t)
	h.api.fail["POST /income"] = http.StatusInternalServerError

	w := h.do(http.MethodPost, "/dashboard/budget", url.Values{
		"amount": {"10"}, "categoryId": {"c-1"}, "date": {"2024-02-05"},
	}, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Could not create income: Internal Server Error")
}

func TestRecordPage_UpdateSendsOnlyChanges(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/dashboard/budget/i-2?year=2024&month=2", url.Values{
		"amount": {"50"}, "categoryId": {"c-1"}, "description": {"yearly bonus"}, "date": {"2024-02-10"},
	}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	calls := h.api.callsTo(http.MethodPatch, "/income/i-2")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"description":"yearly bonus"}`, calls[0].body)

	w = h.do(http.MethodPost, "/dashboard/budget/i-2", url.Values{
		"amount": {"50.00"}, "categoryId": {"c-1"}, "description": {"bonus"}, "date": {"2024-02-10"},
	}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "Nothing+to+save")
	assert.Len(t, h.api.callsTo(http.MethodPatch, "/income/i-2"), 1)
}

func TestRecordPage_EditModalPrefilled(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard/spending?year=2024&month=2&modal=edit&id=e-1", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="30.00"`)
	assert.Contains(t, body, `value="2024-02-01"`)
	assert.Contains(t, body, `/dashboard/spending/e-1?`)
}

func TestRecordPage_DeleteError(t *testing.T) {
	h := newHarness(t)
	h.api.fail["DELETE /expense/e-1"] = http.StatusForbidden

	w := h.do(http.MethodPost, "/dashboard/spending/e-1/delete?year=2024&month=2", url.Values{}, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Could not delete: Access denied")
	assert.Contains(t, w.Body.String(), "rent")
}

func TestCategoryPage(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/dashboard/category?type=expense", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bolig")
	assert.NotContains(t, w.Body.String(), "Løn")

	w = h.do(http.MethodPost, "/dashboard/category", url.Values{"name": {"  "}, "type": {"expense"}}, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name is required.")

	w = h.do(http.MethodPost, "/dashboard/category", url.Values{"name": {"Transport"}, "type": {"expense"}}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	calls := h.api.callsTo(http.MethodPost, "/category")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"name":"Transport","type":"expense"}`, calls[0].body)

	w = h.do(http.MethodPost, "/dashboard/category/c-2", url.Values{"name": {"Husleje"}, "type": {"expense"}}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	patch := h.api.callsTo(http.MethodPatch, "/category/c-2")
	require.Len(t, patch, 1)
	assert.JSONEq(t, `{"name":"Husleje"}`, patch[0].body)

	w = h.do(http.MethodPost, "/dashboard/category/c-2/delete?type=expense", url.Values{}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Len(t, h.api.callsTo(http.MethodDelete, "/category/c-2"), 1)
}

func TestProfilePage(t *testing.T) {
	h := newHarness(t)
	birth := "1990-06-01"
	h.api.me.BirthDate = &birth

	w := h.do(http.MethodGet, "/dashboard/profile", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@example.com")
	assert.Contains(t, w.Body.String(), "(33 years)")

	w = h.do(http.MethodPost, "/dashboard/profile", url.Values{
		"firstName": {"Janet"}, "birthDate": {"1990-06-01"},
	}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	calls := h.api.callsTo(http.MethodPatch, "/users/update-profile")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"firstName":"Janet"}`, calls[0].body)

	w = h.do(http.MethodPost, "/dashboard/profile", url.Values{"firstName": {"Jane"}, "birthDate": {"01-06-1990"}}, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "birth date")
}

func TestAdminPage_NonAdmin(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard/admin", nil, h.token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), MsgNotAdmin)
	assert.Empty(t, h.api.callsTo(http.MethodGet, "/users"))
}

func TestAdminPage_RoleEditor(t *testing.T) {
	h := newHarness(t)
	h.api.me.Roles = []string{client.RoleUser, client.RoleAdmin}

	w := h.do(http.MethodGet, "/dashboard/admin?edit=u-2", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "bob@example.com")
	assert.Contains(t, body, `<option value="user" selected>`)

	w = h.do(http.MethodPost, "/dashboard/admin/users/u-2/roles", url.Values{"role": {"admin"}}, h.token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	calls := h.api.callsTo(http.MethodPatch, "/auth/admin/update-user-roles/u-2")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"roles":["admin"]}`, calls[0].body)

	h.api.fail["PATCH /auth/admin/update-user-roles/u-2"] = http.StatusForbidden
	w = h.do(http.MethodPost, "/dashboard/admin/users/u-2/roles", url.Values{"role": {"user"}}, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Could not update roles: Access denied")
	assert.Contains(t, w.Body.String(), `class="modal"`)
}

func TestChat(t *testing.T) {
	h := newHarness(t)

	w := h.doJSON("/dashboard/api/chat", map[string]interface{}{
		"message": "how am I doing?", "usePageContext": true, "page": "/dashboard/spending",
	}, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "Using 2 expense records as context."}, resp.Messages[0])
	assert.Equal(t, chatMessage{Role: "assistant", Content: "Cut down on Mad."}, resp.Messages[1])

	calls := h.api.callsTo(http.MethodPost, "/ai/contextual-completion")
	require.Len(t, calls, 1)
	var sent struct {
		Message     string             `json:"message"`
		ContextData client.ContextData `json:"contextData"`
	}
	require.NoError(t, json.Unmarshal([]byte(calls[0].body), &sent))
	assert.Len(t, sent.ContextData.Expenses, 2)
	assert.Empty(t, sent.ContextData.Income)

	w = h.doJSON("/dashboard/api/chat", map[string]interface{}{
		"message": "hello", "usePageContext": true, "page": "/dashboard/profile",
	}, h.token)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ChatNoContext, resp.Messages[0].Content)
	assert.Len(t, h.api.callsTo(http.MethodPost, "/ai/completion"), 1)
}

func TestChat_Errors(t *testing.T) {
	h := newHarness(t)
	h.api.fail["POST /ai/completion"] = http.StatusBadGateway

	w := h.doJSON("/dashboard/api/chat", map[string]interface{}{"message": "hi"}, h.token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, ChatFailed, resp.Messages[0].Content)

	w = h.doJSON("/dashboard/api/chat", map[string]interface{}{"message": "hi"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login"`)

	h.api.fail["POST /ai/completion"] = http.StatusUnauthorized
	w = h.doJSON("/dashboard/api/chat", map[string]interface{}{"message": "hi"}, h.token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), client.MsgLoginAgain)

	h.api.fail["POST /ai/completion"] = http.StatusForbidden
	w = h.doJSON("/dashboard/api/chat", map[string]interface{}{"message": "hi"}, h.token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), client.MsgAccessDenied)

	w = h.doJSON("/dashboard/api/chat", map[string]interface{}{"message": ""}, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeries(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard/api/series?kind=expense&year=2024&month=2&view=monthly", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	var resp seriesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "February 2024", resp.Period)
	assert.Equal(t, 42.5, resp.Total)
	require.Len(t, resp.Pie, 2)
	assert.Equal(t, "Bolig", resp.Pie[0].Name)

	w = h.do(http.MethodGet, "/dashboard/api/series?kind=other", nil, h.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/dashboard/export?year=2024&view=yearly", nil, h.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Income", "Expenses"}, f.GetSheetList())
	v, err := f.GetCellValue("Income", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Løn", v)
	v, err = f.GetCellValue("Expenses", "C4")
	require.NoError(t, err)
	assert.Equal(t, "2 records", v)
	v, err = f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "107.5", v)
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
