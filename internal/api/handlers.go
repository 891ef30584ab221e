package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rentalhunter/internal/database"
	"rentalhunter/internal/models"
	"rentalhunter/internal/processor"
	"rentalhunter/internal/scheduler"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
	statsRecentLimit   = 5
)

// ScanRunner triggers scans and remembers the latest report
type ScanRunner interface {
	TryRunNow(ctx context.Context) (*processor.ScanReport, error)
	LastReport() *processor.ScanReport
}

// TestSender sends the connectivity check message
type TestSender interface {
	SendTest(ctx context.Context) error
}

type Handler struct {
	store    database.Store
	scans    ScanRunner
	notifier TestSender
	telegram *models.TelegramConfig
	logger   *logrus.Logger
}

func NewHandler(store database.Store, scans ScanRunner, notifier TestSender, telegram *models.TelegramConfig, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if telegram == nil {
		telegram = &models.TelegramConfig{}
	}

	return &Handler{
		store:    store,
		scans:    scans,
		notifier: notifier,
		telegram: telegram,
		logger:   logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"last_scan": h.scans.LastReport(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := database.GetStats(c.Request.Context(), h.store, statsRecentLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listing stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentListings returns the most recently discovered listings
func (h *Handler) GetRecentListings(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxRecentLimit)
	}

	listings, err := h.store.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent listings"})
		return
	}
	if listings == nil {
		listings = []models.SeenListing{}
	}

	c.JSON(http.StatusOK, listings)
}

// RunScan starts a scan unless the scheduler is already running one
func (h *Handler) RunScan(c *gin.Context) {
	report, err := h.scans.TryRunNow(c.Request.Context())
	if errors.Is(err, scheduler.ErrScanInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Manual scan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scan failed", "report": report})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTelegramConfig reports the notification settings without the full bot token
func (h *Handler) GetTelegramConfig(c *gin.Context) {
	token := ""
	if len(h.telegram.BotToken) > 4 {
		token = "••••" + h.telegram.BotToken[len(h.telegram.BotToken)-4:]
	}

	c.JSON(http.StatusOK, gin.H{
		"is_configured": h.telegram.IsConfigured(),
		"chat_ids":      h.telegram.Recipients(),
		"bot_token":     token,
	})
}

func (h *Handler) TestTelegramConfig(c *gin.Context) {
	if !h.telegram.IsConfigured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Telegram is not configured"})
		return
	}

	if err := h.notifier.SendTest(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to send test message")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test message sent successfully"})
}
