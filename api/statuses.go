package api

import (
	"net/http"

	"github.com/avialine/groupfare/internal/service/status"
	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	registry status.StatusUseCase
}

func NewStatusHandler(registry status.StatusUseCase) *StatusHandler {
	return &StatusHandler{registry: registry}
}

func (h *StatusHandler) Register(router *gin.RouterGroup) {
	router.GET("/statuses", h.list)
	router.POST("/init-statuses", h.init)
}

func (h *StatusHandler) list(c *gin.Context) {
	statuses, err := h.registry.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]statusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, newStatusResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "statuses": out})
}

func (h *StatusHandler) init(c *gin.Context) {
	statuses, seeded, err := h.registry.EnsureRequired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]statusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, newStatusResponse(s))
	}

	message := "statuses already initialized"
	if seeded {
		message = "statuses seeded"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "statuses": out})
}
