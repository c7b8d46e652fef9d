package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"dashlab/internal/cache"
	"dashlab/internal/config"
	apperrors "dashlab/internal/errors"
	"dashlab/internal/logging"
	"dashlab/internal/session"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Server is the dashboard labs web server.
type Server struct {
	router        *gin.Engine
	cfg           *config.Config
	log           *logging.Logger
	store         session.Store
	templates     *template.Template
	source        *DataSource
	analysisCache *cache.Cache
}

// NewServer wires the gin engine, templates, session middleware and data
// source. dataCache backs dataset loading, analysisCache backs the
// caching lab's pipeline results.
func NewServer(cfg *config.Config, store session.Store, dataCache, analysisCache *cache.Cache, logger *logging.Logger) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	funcMap := template.FuncMap{
		"money": formatMoney,
		"comma": formatComma,
		"pct":   formatPct,
		"f1":    func(v float64) string { return formatFloat(v, 1) },
		"f2":    func(v float64) string { return formatFloat(v, 2) },
		"add":   func(a, b int) int { return a + b },
		"mul":   func(a, b float64) float64 { return a * b },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse templates")
	}

	s := &Server{
		router:        gin.Default(),
		cfg:           cfg,
		log:           logger,
		store:         store,
		templates:     templates,
		source:        NewDataSource(cfg, dataCache, logger),
		analysisCache: analysisCache,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(session.Middleware(s.store, s.cfg.Session.CookieName))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		s.log.Error("[setupMiddleware] static filesystem unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	s.router.GET("/formatting", s.handleFormatting)

	s.router.GET("/concepts", s.handleConcepts)
	s.router.POST("/concepts/counter", s.handleConceptsCounter)

	s.router.GET("/charts", s.handleCharts)

	s.router.GET("/caching", s.handleCaching)
	s.router.GET("/caching/city/:city", s.handleCityDetail)

	s.router.GET("/filters", s.handleFilters)
	s.router.GET("/filters/form", s.handleFiltersForm)
	s.router.POST("/filters/form", s.handleFiltersFormApply)
	s.router.GET("/filters/placement", s.handleFiltersPlacement)

	s.router.GET("/interactivity", s.handleInteractivity)
	s.router.GET("/interactivity/widgets", s.handleWidgets)

	s.router.GET("/secrets", s.handleSecrets)
}

// Router exposes the underlying handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server on the given address, blocking until it exits.
func (s *Server) Start(addr string) error {
	s.log.Info("starting dashlab UI on http://%s", addr)
	return s.router.Run(addr)
}

// renderTemplate executes a page template into a buffer first so a
// half-written response never reaches the client.
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.log.Error("[renderTemplate] %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "template rendering failed"})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.log.Error("[renderTemplate] writing %s: %v", templateName, err)
	}
}

// renderError shows the error page and halts the request. Page rendering
// never continues past a failed data dependency.
func (s *Server) renderError(c *gin.Context, status int, err error) {
	s.log.Error("[renderError] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	var buf bytes.Buffer
	data := gin.H{
		"Title":   "Something went wrong",
		"Code":    apperrors.GetCode(err),
		"Message": err.Error(),
	}
	if terr := s.templates.ExecuteTemplate(&buf, "error.html", data); terr != nil {
		c.AbortWithStatus(status)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	buf.WriteTo(c.Writer) //nolint:errcheck
	c.Abort()
}

// pageData builds the common template payload and bumps the per-page run
// counter, making the request/render cycle visible on every page.
func (s *Server) pageData(c *gin.Context, title, active string) gin.H {
	sess := session.FromContext(c)
	runs := sess.Increment(c.Request.Context(), "runs:"+active, 1)
	return gin.H{
		"Title":  title,
		"Active": active,
		"Runs":   runs,
	}
}

// isHTMX reports whether the request came from an htmx fragment swap.
func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
