package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List Alerts
// @Description  Recent alert log entries, newest first
// @Tags         alerts
// @Produce      json
// @Param        limit  query  int  false  "max entries, default 50"
// @Success      200  {object}  []domain.Alert
// @Router       /alerts [get]
func (s *Server) ListAlerts(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	rows, err := s.alerts.ListRecent(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}
