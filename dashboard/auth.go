package dashboard

import (
	"errors"
	"net/http"
	"strings"

	"economic/client"
	"economic/session"

	"github.com/gin-gonic/gin"
)

const accountKey = "dashboard.account"

// cookieStore keeps the JWT in the session cookie of one request.
type cookieStore struct {
	c      *gin.Context
	name   string
	maxAge int
	secure bool
}

func (s *Server) cookies(c *gin.Context) *cookieStore {
	return &cookieStore{
		c:      c,
		name:   s.cfg.CookieName,
		maxAge: s.cfg.CookieDays * 24 * 60 * 60,
		secure: s.secure,
	}
}

func (cs *cookieStore) Load() (string, error) {
	v, err := cs.c.Cookie(cs.name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	return v, err
}

func (cs *cookieStore) Save(token string) error {
	cs.c.SetSameSite(http.SameSiteLaxMode)
	cs.c.SetCookie(cs.name, token, cs.maxAge, "/", "", cs.secure, true)
	return nil
}

func (cs *cookieStore) Clear() error {
	cs.c.SetSameSite(http.SameSiteLaxMode)
	cs.c.SetCookie(cs.name, "", -1, "/", "", cs.secure, true)
	return nil
}

// redirect records the last navigation of a session.
type redirect struct {
	path string
}

func (r *redirect) Navigate(path string) { r.path = path }

// account is the signed in user's view of the backend for one request.
type account struct {
	sess       *session.Session
	income     *client.RecordService
	expense    *client.RecordService
	categories *client.CategoryService
	users      *client.UserService
	chat       *client.ChatService
}

func (a *account) records(kind string) *client.RecordService {
	if kind == client.TypeIncome {
		return a.income
	}
	return a.expense
}

func (s *Server) newSession(c *gin.Context, nav session.Navigator) *session.Session {
	// requests are short lived; the expiry is re-checked on every request
	return session.New(s.cookies(c), nav, session.WithPollInterval(0), session.WithClock(s.now))
}

func (s *Server) accountFor(sess *session.Session) *account {
	api := s.api.WithTokens(sess)
	return &account{
		sess:       sess,
		income:     client.NewIncomeService(api),
		expense:    client.NewExpenseService(api),
		categories: client.NewCategoryService(api),
		users:      client.NewUserService(api),
		chat:       client.NewChatService(api),
	}
}

// requireSession loads the cookie session. Pages redirect to the login page;
// JSON endpoints answer 401 with the redirect target.
func (s *Server) requireSession(jsonMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		nav := &redirect{}
		sess := s.newSession(c, nav)
		if err := sess.Init(); err != nil {
			s.log.WithError(err).Warn("read session cookie")
		}
		if sess.State() != session.Authenticated {
			target := nav.path
			if target == "" {
				target = session.LoginPath(session.ReasonNone)
			}
			if jsonMode {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message":  client.MsgLoginAgain,
					"redirect": target,
				})
				return
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Set(accountKey, s.accountFor(sess))
		c.Next()
	}
}

func currentAccount(c *gin.Context) *account {
	return c.MustGet(accountKey).(*account)
}

var reasonMessages = map[session.Reason]string{
	session.ReasonExpiredInitial:  "Your session has expired. Please log in again.",
	session.ReasonExpiredInterval: "Your session has expired. Please log in again.",
	session.ReasonCorrupt:         "Your session could not be read. Please log in again.",
}

type authPage struct {
	page
	Email   string
	Name    string
	Message string
}

func (s *Server) loginPage(c *gin.Context) {
	data := authPage{page: basePage(c, "Log in")}
	if msg := c.Query("message"); msg != "" {
		if text, ok := reasonMessages[session.Reason(msg)]; ok {
			data.Message = text
		} else {
			data.Message = msg
		}
	}
	c.HTML(http.StatusOK, "login.html", data)
}

func (s *Server) login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	data := authPage{page: basePage(c, "Log in"), Email: email}
	if email == "" || password == "" {
		data.Error = "Email and password are required."
		c.HTML(http.StatusBadRequest, "login.html", data)
		return
	}

	token, err := client.NewAuthService(s.api).Login(c.Request.Context(), email, password)
	if err != nil {
		s.log.WithError(err).WithField("email", email).Info("login failed")
		data.Error = loginError(err)
		c.HTML(http.StatusUnauthorized, "login.html", data)
		return
	}
	s.startSession(c, token, "login.html", &data)
}

func (s *Server) registerPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", authPage{page: basePage(c, "Create account")})
}

func (s *Server) register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	name := strings.TrimSpace(c.PostForm("name"))
	password := c.PostForm("password")
	data := authPage{page: basePage(c, "Create account"), Email: email, Name: name}

	switch {
	case email == "" || password == "":
		data.Error = "Email and password are required."
	case len(password) < 6:
		data.Error = "Password must be at least 6 characters."
	case password != c.PostForm("confirm"):
		data.Error = "Passwords do not match."
	}
	if data.Error != "" {
		c.HTML(http.StatusBadRequest, "register.html", data)
		return
	}

	token, err := client.NewAuthService(s.api).Register(c.Request.Context(), email, password, name)
	if err != nil {
		data.Error = client.FriendlyMessage(err, "")
		c.HTML(http.StatusBadRequest, "register.html", data)
		return
	}
	s.startSession(c, token, "register.html", &data)
}

// startSession stores token and follows the session to the dashboard. On a
// bad token the form named by tmpl is shown again.
func (s *Server) startSession(c *gin.Context, token, tmpl string, data *authPage) {
	nav := &redirect{}
	if err := s.newSession(c, nav).Login(token); err != nil {
		s.log.WithError(err).Warn("backend issued an unreadable token")
		data.Error = "The server returned an invalid session. Please try again."
		c.HTML(http.StatusBadGateway, tmpl, data)
		return
	}
	c.Redirect(http.StatusSeeOther, nav.path)
}

func (s *Server) logout(c *gin.Context) {
	reason := session.Reason(c.Query("reason"))
	if _, known := reasonMessages[reason]; !known {
		reason = session.ReasonNone
	}
	nav := &redirect{}
	s.newSession(c, nav).Logout(reason)
	c.Redirect(http.StatusSeeOther, nav.path)
}

// loginError keeps bad credentials from reading as an expired session.
func loginError(err error) string {
	if client.IsUnauthorized(err) {
		return "Invalid email or password."
	}
	return client.FriendlyMessage(err, "Login failed. Please try again.")
}
