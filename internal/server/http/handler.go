package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators of the REST API. Export may be nil, in which
// case the export route is not registered. Metrics may be nil.
type Deps struct {
	Users      UserService
	Notes      NoteService
	AI         AIService
	Export     ExportService
	Logger     logging.Logger
	Metrics    *metrics.Metrics
	CORSOrigin string
}

type Handler struct {
	users   UserService
	notes   NoteService
	ai      AIService
	export  ExportService
	logger  logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(d Deps) *gin.Engine {
	h := &Handler{
		users:   d.Users,
		notes:   d.Notes,
		ai:      d.AI,
		export:  d.Export,
		logger:  d.Logger.With("module", "http"),
		metrics: d.Metrics,
		now:     time.Now,
	}

	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger(), h.metricsMiddleware(), corsMiddleware(d.CORSOrigin))

	r.GET("/health", h.health)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.GET("/me", h.accessGuard(), h.me)

	protected := api.Group("", h.accessGuard())

	protected.GET("/notes", h.listNotes)
	protected.POST("/notes", h.createNote)
	protected.GET("/notes/:id", h.getNote)
	protected.PUT("/notes/:id", h.updateNote)
	protected.DELETE("/notes/:id", h.deleteNote)
	if h.export != nil {
		protected.POST("/notes/:id/export", h.exportNote)
	}

	protected.POST("/ai/process", h.process)
	protected.GET("/history", h.history)

	return r
}

func (h *Handler) log(c *gin.Context) logging.Logger {
	if rid := c.GetString(requestIDKey); rid != "" {
		return h.logger.With("request_id", rid)
	}
	return h.logger
}

// bindOptionalJSON binds the request body into req. A missing or empty body
// leaves req at its zero value.
func bindOptionalJSON(c *gin.Context, req any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Timestamp: h.now().UTC()})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid user data")
		return
	}

	sess, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "Server error during registration")
		return
	}
	c.JSON(http.StatusCreated, toSession(sess))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	sess, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, errorResponse{Error: msgBadLogin})
			return
		}
		h.fail(c, err, "Server error during login")
		return
	}
	c.JSON(http.StatusOK, toSession(sess))
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, toUser(currentUser(c)))
}

func (h *Handler) listNotes(c *gin.Context) {
	notes, err := h.notes.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, "Failed to fetch notes")
		return
	}
	c.JSON(http.StatusOK, toNotes(notes))
}

func (h *Handler) createNote(c *gin.Context) {
	var req noteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid note data")
		return
	}

	var title, content string
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		content = *req.Content
	}

	n, err := h.notes.Create(c.Request.Context(), currentUser(c).ID, title, content)
	if err != nil {
		h.fail(c, err, "Failed to create note")
		return
	}
	c.JSON(http.StatusCreated, toNote(n))
}

func (h *Handler) getNote(c *gin.Context) {
	n, err := h.notes.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch note")
		return
	}
	c.JSON(http.StatusOK, toNote(n))
}

func (h *Handler) updateNote(c *gin.Context) {
	var req noteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid note data")
		return
	}

	n, err := h.notes.Update(c.Request.Context(), currentUser(c).ID, c.Param("id"),
		models.NoteUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(c, err, "Failed to update note")
		return
	}
	c.JSON(http.StatusOK, toNote(n))
}

func (h *Handler) deleteNote(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete note")
		return
	}
	c.JSON(http.StatusOK, deleteResponse{Success: true, Message: "Note deleted"})
}

func (h *Handler) exportNote(c *gin.Context) {
	var req exportRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid export request")
		return
	}
	if req.Format == "" {
		req.Format = c.Query("format")
	}

	exp, err := h.export.Export(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.Format)
	if err != nil {
		h.fail(c, err, "Failed to export note")
		return
	}
	c.JSON(http.StatusOK, exportResponse{URL: exp.URL, Key: exp.Key, Format: exp.Format, ExpiresAt: exp.ExpiresAt})
}

func (h *Handler) process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please provide some text to process.")
		return
	}

	res, err := h.ai.Process(c.Request.Context(), currentUser(c).ID, req.Text, req.Mode)
	if err != nil {
		h.fail(c, err, msgAIFailed)
		return
	}
	c.JSON(http.StatusOK, processResponse{Success: true, Result: res.Result, Mode: string(res.Mode)})
}

func (h *Handler) history(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
		if n == 0 {
			// 0 would silently mean "default" in the service
			badRequest(c, fmt.Sprintf("limit must be between 1 and %d", services.MaxHistoryLimit))
			return
		}
		limit = n
	}

	entries, err := h.ai.History(c.Request.Context(), currentUser(c).ID, limit)
	if err != nil {
		h.fail(c, err, "Failed to fetch history")
		return
	}
	c.JSON(http.StatusOK, toHistory(entries))
}
