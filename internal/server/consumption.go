package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
)

type createReadingRequest struct {
	Timestamp string   `json:"timestamp"`
	Papp      *int     `json:"papp"`
	Hchc      *float64 `json:"hchc"`
	Hchp      *float64 `json:"hchp"`
	Ptec      *int     `json:"ptec"`
}

// @Summary      Record Reading
// @Description  Store one meter reading; an existing timestamp is overwritten
// @Tags         consumption
// @Accept       json
// @Produce      json
// @Param        request body createReadingRequest true "Reading"
// @Success      200  {object}  domain.Reading
// @Router       /consumption [post]
func (s *Server) CreateConsumption(c *gin.Context) {
	var req createReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.Papp == nil {
		AbortWithError(c, newValidationError("papp", "required", "papp is required"))
		return
	}
	if req.Hchc == nil {
		AbortWithError(c, newValidationError("hchc", "required", "hchc is required"))
		return
	}
	if req.Hchp == nil {
		AbortWithError(c, newValidationError("hchp", "required", "hchp is required"))
		return
	}

	at, err := parseReadingTimestamp(req.Timestamp)
	if err != nil {
		AbortWithError(c, readingdomain.ErrInvalidTimestamp)
		return
	}

	reading := &readingdomain.Reading{
		Timestamp: readingdomain.FormatTime(at),
		Papp:      *req.Papp,
		Hchc:      *req.Hchc,
		Hchp:      *req.Hchp,
		Ptec:      req.Ptec,
	}
	if err := s.readings.Upsert(c.Request.Context(), reading); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reading})
}

// @Summary      Query Readings
// @Description  Readings in a closed timestamp range, ascending
// @Tags         consumption
// @Produce      json
// @Param        start  query  string  true  "range start, 2006-01-02T15:04:05Z"
// @Param        end    query  string  true  "range end"
// @Success      200  {object}  []domain.Reading
// @Router       /consumption [get]
func (s *Server) QueryConsumption(c *gin.Context) {
	startAt, err := parseReadingTimestamp(c.Query("start"))
	if err != nil {
		AbortWithError(c, readingdomain.ErrInvalidTimestamp)
		return
	}
	endAt, err := parseReadingTimestamp(c.Query("end"))
	if err != nil {
		AbortWithError(c, readingdomain.ErrInvalidTimestamp)
		return
	}
	if startAt.After(endAt) {
		AbortWithError(c, readingdomain.ErrInvalidRange)
		return
	}

	rows, err := s.readings.QueryRange(c.Request.Context(),
		readingdomain.FormatTime(startAt),
		readingdomain.FormatTime(endAt),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

// @Summary      Latest Reading
// @Tags         consumption
// @Produce      json
// @Success      200  {object}  domain.Reading
// @Router       /consumption/latest [get]
func (s *Server) GetLatestConsumption(c *gin.Context) {
	latest, err := s.readings.Latest(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if latest == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": latest})
}

// @Summary      Count Readings
// @Description  Total stored readings, optionally restricted to since
// @Tags         consumption
// @Produce      json
// @Param        since  query  string  false  "count readings at or after this timestamp"
// @Success      200  {object}  map[string]int64
// @Router       /consumption/count [get]
func (s *Server) CountConsumption(c *gin.Context) {
	since := strings.TrimSpace(c.Query("since"))

	var (
		count int64
		err   error
	)
	if since == "" {
		count, err = s.readings.Count(c.Request.Context())
	} else {
		var at time.Time
		at, err = parseReadingTimestamp(since)
		if err != nil {
			AbortWithError(c, readingdomain.ErrInvalidTimestamp)
			return
		}
		count, err = s.readings.CountSince(c.Request.Context(), readingdomain.FormatTime(at))
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// @Summary      List Readings Page
// @Description  Readings newest first with page/limit
// @Tags         consumption
// @Produce      json
// @Param        page   query  int  false  "1-based page"
// @Param        limit  query  int  false  "page size, max 500"
// @Success      200  {object}  []domain.Reading
// @Router       /consumption/paginated [get]
func (s *Server) ListConsumptionPage(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 100)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	rows, total, err := s.readings.ListPaginated(c.Request.Context(), page, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  rows,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// parseReadingTimestamp accepts the storage format and RFC 3339 with an
// offset; either way the result is normalized to UTC.
func parseReadingTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if at, err := readingdomain.ParseTime(value); err == nil {
		return at, nil
	}
	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return at.UTC(), nil
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
