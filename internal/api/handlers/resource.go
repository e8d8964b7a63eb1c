package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/nebari-dev/registrar/internal/events"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/nebari-dev/registrar/internal/service"
	"github.com/nebari-dev/registrar/internal/web"
)

// DefaultTimeout bounds the store work done by a single request.
const DefaultTimeout = 5 * time.Second

// ResourceHandler serves the JSON API and the HTML page for one kind.
type ResourceHandler struct {
	svc     *service.ResourceService
	broker  events.Broker
	timeout time.Duration
}

// NewResourceHandler creates a handler backed by svc. broker may be nil, in
// which case the events stream answers 503.
func NewResourceHandler(svc *service.ResourceService, broker events.Broker) *ResourceHandler {
	return &ResourceHandler{svc: svc, broker: broker, timeout: DefaultTimeout}
}

// CreateRecordRequest is the JSON body accepted by create.
type CreateRecordRequest struct {
	Name        string `json:"name" example:"aws"`
	Description string `json:"description" example:"Amazon Web Services"`
}

func (h *ResourceHandler) kind() models.Kind { return h.svc.Kind() }

func (h *ResourceHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// Ping godoc
// @Summary Health check
// @Description Always answers pong without touching the database
// @Tags records
// @Produce json
// @Param resource path string true "component or role"
// @Success 200 {object} MessageResponse
// @Router /{resource}/ping [get]
func (h *ResourceHandler) Ping(c *gin.Context) {
	success(c, http.StatusOK, "pong!")
}

// Create godoc
// @Summary Create a record
// @Description Adds a record unless one with the same name exists
// @Tags records
// @Accept json
// @Produce json
// @Param resources path string true "components or roles"
// @Param request body CreateRecordRequest true "Record"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /{resources} [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	var req CreateRecordRequest
	if c.ContentType() != binding.MIMEJSON {
		fail(c, http.StatusBadRequest, service.InvalidPayloadMessage)
		return
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, service.InvalidPayloadMessage)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	rec, err := h.svc.Create(ctx, service.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		RemoteAddr:  c.ClientIP(),
	})
	if err != nil {
		handleServiceError(c, h.kind(), err)
		return
	}

	success(c, http.StatusCreated, service.AddedMessage(rec.Name))
}

// Get godoc
// @Summary Get a record by ID
// @Tags records
// @Produce json
// @Param resources path string true "components or roles"
// @Param id path int true "Record ID"
// @Success 200 {object} RecordResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /{resources}/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	rec, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		handleServiceError(c, h.kind(), err)
		return
	}

	c.JSON(http.StatusOK, RecordResponse{Status: StatusSuccess, Data: *rec})
}

// List godoc
// @Summary List all records
// @Description Records are returned in creation order
// @Tags records
// @Produce json
// @Param resources path string true "components or roles"
// @Success 200 {object} ListResponse
// @Failure 500 {object} MessageResponse
// @Router /{resources} [get]
func (h *ResourceHandler) List(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	records, err := h.svc.List(ctx)
	if err != nil {
		handleServiceError(c, h.kind(), err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Status: StatusSuccess,
		Data:   map[string][]models.Record{h.kind().Plural: records},
	})
}

// Index renders the HTML page listing every record.
func (h *ResourceHandler) Index(c *gin.Context) {
	h.renderIndex(c, http.StatusOK, web.NewIndexPage(h.kind(), nil))
}

// Submit handles the HTML form. It shares validation with Create and
// redirects back to the page on success.
func (h *ResourceHandler) Submit(c *gin.Context) {
	name := c.PostForm("name")
	description := c.PostForm("description")

	ctx, cancel := h.requestContext(c)
	defer cancel()

	_, err := h.svc.Create(ctx, service.CreateRequest{
		Name:        name,
		Description: description,
		RemoteAddr:  c.ClientIP(),
	})
	if err == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	code, message := statusFor(h.kind(), err)
	if code == http.StatusInternalServerError {
		slog.Error("form submission failed", "kind", h.kind().Plural, "error", err)
	}
	page := web.NewIndexPage(h.kind(), nil)
	page.Error = message
	page.Name = name
	page.Description = description
	h.renderIndex(c, code, page)
}

// renderIndex fills page with the current records and renders it.
func (h *ResourceHandler) renderIndex(c *gin.Context, code int, page web.IndexPage) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	records, err := h.svc.List(ctx)
	if err != nil {
		slog.Error("failed to list records for page", "kind", h.kind().Plural, "error", err)
		c.String(http.StatusInternalServerError, InternalErrorMessage)
		return
	}
	page.Records = records
	c.HTML(code, web.IndexTemplate, page)
}

// Events godoc
// @Summary Stream record events via Server-Sent Events
// @Description Emits a "created" event for every record added after the stream opens
// @Tags records
// @Produce text/event-stream
// @Param resource path string true "component or role"
// @Success 200 {string} string "event stream"
// @Failure 503 {object} MessageResponse
// @Router /{resource}/events [get]
func (h *ResourceHandler) Events(c *gin.Context) {
	if h.broker == nil {
		fail(c, http.StatusServiceUnavailable, "Event stream unavailable.")
		return
	}

	kind := h.kind()
	ch, cancel, err := h.broker.Subscribe(c.Request.Context(), kind.Plural)
	if err != nil {
		slog.Error("failed to subscribe to events", "kind", kind.Plural, "error", err)
		fail(c, http.StatusServiceUnavailable, "Event stream unavailable.")
		return
	}
	defer cancel()

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Status(http.StatusOK)

	// Let the client know the subscription is live
	fmt.Fprintf(c.Writer, ": subscribed to %s\n\n", kind.Plural)
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case e, ok := <-ch:
			if !ok {
				fmt.Fprintf(c.Writer, "event: done\ndata: Stream ended\n\n")
				c.Writer.Flush()
				return
			}
			payload, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to encode event", "kind", kind.Plural, "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", e.Action, payload)
			c.Writer.Flush()
		}
	}
}
