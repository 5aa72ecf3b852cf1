package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// @Summary      Get Indicators
// @Description  Composite dashboard payload for a period
// @Tags         indicators
// @Produce      json
// @Param        periode  query  string  false  "jour | semaine | mois"
// @Success      200  {object}  domain.Indicators
// @Router       /indicators [get]
func (s *Server) GetIndicators(c *gin.Context) {
	period := strings.TrimSpace(c.Query("periode"))
	payload := s.indicatorSvc.GetAllIndicators(c.Request.Context(), period)
	c.JSON(http.StatusOK, gin.H{"data": payload})
}
