package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
)

const userIDHeader = "X-User-Id"

func (s *Server) userID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		AbortWithError(c, ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func (s *Server) CreateAlert(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		return
	}

	var req alertdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.alertSvc.Create(c.Request.Context(), userID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListAlerts(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		return
	}

	page, err := parseOptionalInt(c.Query("page"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	size, err := parseOptionalInt(c.Query("size"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.alertSvc.List(c.Request.Context(), userID, alertdomain.ListRequest{
		Query: c.Query("q"),
		Brand: c.Query("brand"),
		Page:  page,
		Size:  size,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetAlert(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		return
	}

	resp, err := s.alertSvc.Get(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateAlert(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		return
	}

	var req alertdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.alertSvc.Update(c.Request.Context(), userID, c.Param("productId"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ResetAlertStatus(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		return
	}

	resp, err := s.alertSvc.ResetStatus(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteAlert(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		return
	}

	if err := s.alertSvc.Delete(c.Request.Context(), userID, c.Param("productId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
