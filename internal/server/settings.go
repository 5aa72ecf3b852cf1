package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type putSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// @Summary      Get Setting
// @Tags         settings
// @Produce      json
// @Param        key  path  string  true  "setting key"
// @Success      200  {object}  map[string]any
// @Router       /settings/{key} [get]
func (s *Server) GetSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		AbortWithError(c, newValidationError("key", "required", "key is required"))
		return
	}

	value, ok := s.settingsSvc.GetRaw(c.Request.Context(), key)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// @Summary      Put Setting
// @Description  Store one setting; the value is any JSON document
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        key      path  string             true  "setting key"
// @Param        request  body  putSettingRequest  true  "value"
// @Success      200  {object}  map[string]any
// @Router       /settings/{key} [put]
func (s *Server) PutSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		AbortWithError(c, newValidationError("key", "required", "key is required"))
		return
	}

	var req putSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Value) == 0 {
		AbortWithError(c, newValidationError("value", "required", "value is required"))
		return
	}

	var decoded any
	if err := json.Unmarshal(req.Value, &decoded); err != nil {
		AbortWithError(c, newValidationError("value", "invalid_json", "value must be valid JSON"))
		return
	}

	if err := s.settingsSvc.Put(c.Request.Context(), key, decoded); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}
