package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/registrar/internal/db"
	"gorm.io/gorm"
)

// InfoHandler handles server info and health requests
type InfoHandler struct {
	db      *gorm.DB
	service string
}

// NewInfoHandler creates a new InfoHandler for the named service
func NewInfoHandler(database *gorm.DB, service string) *InfoHandler {
	return &InfoHandler{db: database, service: service}
}

// InfoResponse represents the server info response
type InfoResponse struct {
	ServerID string `json:"server_id"`
	VersionResponse
}

// GetInfo godoc
// @Summary Get server information
// @Description Returns server information including the unique server ID and version
// @Tags system
// @Produce json
// @Success 200 {object} InfoResponse
// @Failure 500 {object} ErrorResponse
// @Router /info [get]
func (h *InfoHandler) GetInfo(c *gin.Context) {
	serverID, err := db.ServerID(c.Request.Context(), h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to retrieve server ID",
		})
		return
	}

	c.JSON(http.StatusOK, InfoResponse{
		ServerID:        serverID,
		VersionResponse: versionInfo(h.service),
	})
}

// Healthz godoc
// @Summary Liveness check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz godoc
// @Summary Readiness check
// @Description Reports ready once the database answers a ping
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Router /readyz [get]
func (h *InfoHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
