package api

import (
	"net/http"
	"strconv"

	"github.com/Ishagupta145/mcp-server/internal/service"
	"github.com/gin-gonic/gin"
)

type LogHandler struct {
	logService service.LogService
}

func NewLogHandler(logService service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// @Summary Get recent request logs
// @Description Retrieves recorded gateway requests, newest first
// @Tags Logs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Entries per page (1-100)" default(20)
// @Success 200 {array} models.LogEntry
// @Failure 400 {object} map[string]string "Invalid pagination"
// @Failure 500 {object} map[string]string "Failed to retrieve logs"
// @Router /logs [get]
func (h *LogHandler) GetRecentLogs(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	logs, err := h.logService.GetRecentLogs(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
