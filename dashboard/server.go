// Package dashboard is the server rendered web front end. It talks to the
// REST backend through the client package and keeps the JWT in a cookie.
package dashboard

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"economic/client"
	"economic/config"
	"economic/logging"
	"economic/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the dashboard pages.
type Server struct {
	cfg    config.DashboardConfig
	api    *client.Client
	secure bool
	now    func() time.Time
	log    *logrus.Entry
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now for period defaults and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

// New creates a dashboard for the backend reached through api.
func New(cfg config.DashboardConfig, api *client.Client, opts ...Option) *Server {
	if cfg.CookieName == "" {
		cfg.CookieName = "jwt-token"
	}
	if cfg.CookieDays <= 0 {
		cfg.CookieDays = 7
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	s := &Server{
		cfg: cfg,
		api: api,
		now: time.Now,
		log: logging.Component("dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) templates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}

// Router builds the gin engine with every page registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger("dashboard"))
	r.SetHTMLTemplate(s.templates())

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.GET("/register", s.registerPage)
	r.POST("/register", s.register)
	r.GET("/logout", s.logout)
	r.POST("/logout", s.logout)

	dash := r.Group("/dashboard", s.requireSession(false))
	{
		dash.GET("", s.overview)

		budget := s.recordPages(client.TypeIncome)
		dash.GET("/budget", budget.show)
		dash.POST("/budget", budget.create)
		dash.POST("/budget/:id", budget.update)
		dash.POST("/budget/:id/delete", budget.remove)

		spending := s.recordPages(client.TypeExpense)
		dash.GET("/spending", spending.show)
		dash.POST("/spending", spending.create)
		dash.POST("/spending/:id", spending.update)
		dash.POST("/spending/:id/delete", spending.remove)

		dash.GET("/category", s.categories)
		dash.POST("/category", s.createCategory)
		dash.POST("/category/:id", s.updateCategory)
		dash.POST("/category/:id/delete", s.deleteCategory)

		dash.GET("/profile", s.profile)
		dash.POST("/profile", s.updateProfile)

		dash.GET("/admin", s.admin)
		dash.POST("/admin/users/:id/roles", s.updateRoles)

		dash.GET("/export", s.export)
	}

	api := r.Group("/dashboard/api", s.requireSession(true))
	{
		api.POST("/chat", s.chat)
		api.GET("/series", s.series)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "notfound.html", basePage(c, "Not found"))
	})
	return r
}

// Run serves on the configured port.
func (s *Server) Run() error {
	s.log.WithField("api", s.api.BaseURL()).Infof("dashboard listening on %s", s.cfg.Port)
	return s.Router().Run(s.cfg.Port)
}
