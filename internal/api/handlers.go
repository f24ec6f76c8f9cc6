package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/game"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
)

type registerRequest struct {
	InitData   string `json:"initData" binding:"required"`
	StartParam string `json:"startParam"`
}

type syncRequest struct {
	InitData string              `json:"initData" binding:"required"`
	State    *models.ClientState `json:"state" binding:"required"`
}

type claimRequest struct {
	InitData string `json:"initData" binding:"required"`
}

type invoiceRequest struct {
	InitData string `json:"initData" binding:"required"`
	ItemID   string `json:"itemId" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	result, err := s.svc.Register(c.Request.Context(), req.InitData, req.StartParam)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) syncState(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, err := s.svc.SyncState(c.Request.Context(), req.InitData, req.State)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) claimRewards(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	rewards, err := s.svc.ClaimRewards(c.Request.Context(), req.InitData)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

func (s *Server) createInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	link, err := s.svc.CreateInvoice(c.Request.Context(), req.InitData, req.ItemID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoiceUrl": link})
}

// writeError maps domain errors onto responses. Internal detail never leaks
// to the client; failures are logged server-side only.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrAuth):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid Telegram data"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found, register first"})
	case errors.Is(err, game.ErrUnknownItem):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found or not for sale"})
	default:
		s.log.Error("request_failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
