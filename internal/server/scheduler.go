package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RunScheduler triggers one evaluation run on demand. The date
// defaults to today in the configured zone; an email filter narrows
// the run to a single account for smoke testing.
func (s *Server) RunScheduler(c *gin.Context) {
	cfg := s.scheduler.Config()

	date := time.Now().In(cfg.Location())
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateOnlyLayout, raw, cfg.Location())
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		date = parsed
	}

	summary, err := s.scheduler.Run(c.Request.Context(), date, c.Query("email"))
	if err != nil {
		AbortWithError(c, ErrUpstream)
		return
	}
	c.JSON(http.StatusOK, summary)
}
