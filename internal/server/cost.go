package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Daily Cost Report
// @Description  Per-day cost table over the full stored series
// @Tags         cost
// @Produce      json
// @Success      200  {object}  domain.DailyCostReport
// @Router       /cost/report [get]
func (s *Server) GetCostReport(c *gin.Context) {
	report := s.indicatorSvc.DailyCostReport(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": report})
}
