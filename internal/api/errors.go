package api

import (
	"errors"
	"net/http"

	"github.com/Ishagupta145/mcp-server/internal/models"
	"github.com/gin-gonic/gin"
)

// writeFetchError maps service errors to the gateway's status codes.
func writeFetchError(c *gin.Context, err error) {
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		fe = models.NewDataFetchError(err.Error())
	}

	switch fe.Kind {
	case models.KindInvalidSymbol:
		c.JSON(http.StatusNotFound, gin.H{"message": fe.Message})
	case models.KindExchange:
		c.JSON(http.StatusBadGateway, gin.H{"message": "Error communicating with the exchange: " + fe.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal error occurred: " + fe.Message})
	}
}
