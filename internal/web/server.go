// Package web serves the gym form and list as a local HTML page.
//
// All handlers share one controller and run one at a time, matching the
// single-user model: each request performs at most one mutate-then-reload
// sequence before the next request is served.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/wtmobile/internal/app"
	"github.com/roach88/wtmobile/internal/gym"
	"github.com/roach88/wtmobile/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the HTTP front end for one controller.
type Server struct {
	mu     sync.Mutex
	ctrl   *app.Controller
	logger *slog.Logger
	engine *gin.Engine
}

type pageData struct {
	Title  string
	View   app.View
	Footer string
}

type confirmData struct {
	Title  string
	Prompt string
	Gym    gym.Gym
}

// New builds the router. The controller should already be loaded.
func New(ctrl *app.Controller, logger *slog.Logger) *Server {
	s := &Server{ctrl: ctrl, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.page)
	r.POST("/gyms", s.submit)
	r.POST("/cancel", s.cancel)
	r.GET("/gyms/:id/edit", s.edit)
	r.GET("/gyms/:id/delete", s.confirmDelete)
	r.POST("/gyms/:id/delete", s.delete)

	api := r.Group("/api")
	{
		api.GET("/gyms", s.listJSON)
		api.GET("/view", s.viewJSON)
	}

	s.engine = r
	return s
}

// Handler returns the http.Handler to serve.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// GET /
func (s *Server) page(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	s.renderPage(c, http.StatusOK)
}

// POST /gyms
func (s *Server) submit(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.SetDraft(gym.Draft{
		Name:  c.PostForm("name"),
		City:  c.PostForm("city"),
		Notes: c.PostForm("notes"),
	})
	_, err := s.ctrl.Submit(c.Request.Context())
	switch {
	case errors.Is(err, gym.ErrNameRequired):
		s.renderPage(c, http.StatusUnprocessableEntity)
	case err != nil:
		s.fail(c, err)
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// POST /cancel
func (s *Server) cancel(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Cancel()
	c.Redirect(http.StatusSeeOther, "/")
}

// GET /gyms/:id/edit
func (s *Server) edit(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.StartEdit(c.Param("id")); err != nil {
		c.String(http.StatusNotFound, "gym not found")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GET /gyms/:id/delete
func (s *Server) confirmDelete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.ctrl.Resolve(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "gym not found")
		return
	}
	c.HTML(http.StatusOK, "confirm.html", confirmData{
		Title:  render.Title,
		Prompt: app.DeletePrompt,
		Gym:    g,
	})
}

// POST /gyms/:id/delete
func (s *Server) delete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed := app.ConfirmFunc(func(string) (bool, error) {
		return c.PostForm("confirm") == "yes", nil
	})
	if _, err := s.ctrl.Delete(c.Request.Context(), c.Param("id"), confirmed); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GET /api/gyms
func (s *Server) listJSON(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.ctrl.Gyms())
}

// GET /api/view
func (s *Server) viewJSON(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.ctrl.View())
}

func (s *Server) renderPage(c *gin.Context, status int) {
	c.HTML(status, "page.html", pageData{
		Title:  render.Title,
		View:   s.ctrl.View(),
		Footer: render.Footer,
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "storage error")
}
