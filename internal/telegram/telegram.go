package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rentalhunter/config"
	"rentalhunter/internal/models"
)

var (
	ErrNotConfigured = errors.New("Telegram bot token is not configured")
	ErrNoRecipients  = errors.New("Telegram chat ID is not configured")
)

// Service delivers alerts to every configured chat
type Service struct {
	logger  *logrus.Logger
	client  *http.Client
	config  *models.TelegramConfig
	profile config.SearchProfile
}

func NewService(cfg *models.TelegramConfig, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if cfg == nil {
		cfg = &models.TelegramConfig{}
	}

	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config:  cfg,
		profile: config.DefaultSearchProfile(),
	}
}

// WithProfile sets the search profile described by the test message
func (s *Service) WithProfile(profile config.SearchProfile) *Service {
	s.profile = profile
	return s
}

func (s *Service) checkConfig() ([]string, error) {
	if s.config.BotToken == "" {
		return nil, ErrNotConfigured
	}
	recipients := s.config.Recipients()
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return recipients, nil
}

func (s *Service) endpoint(method string) string {
	base := strings.TrimRight(s.config.APIURL, "/")
	if base == "" {
		base = "https://api.telegram.org"
	}
	return fmt.Sprintf("%s/bot%s/%s", base, s.config.BotToken, method)
}

// call posts a JSON payload to a Bot API method
func (s *Service) call(ctx context.Context, method string, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %v", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(method), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s to Telegram API: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// SendMessage sends an HTML message to one chat
func (s *Service) SendMessage(ctx context.Context, chatID, text string) error {
	return s.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	})
}

// SendPhoto sends a photo with an HTML caption to one chat
func (s *Service) SendPhoto(ctx context.Context, chatID, photoURL, caption string) error {
	return s.call(ctx, "sendPhoto", map[string]interface{}{
		"chat_id":    chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	})
}

// NotifyListing announces a listing to every recipient. It succeeds when at
// least one recipient received it.
func (s *Service) NotifyListing(ctx context.Context, listing models.Listing) error {
	recipients, err := s.checkConfig()
	if err != nil {
		return err
	}

	text := listing.FormatAlert()
	return s.broadcast(recipients, func(chatID string) error {
		if listing.PhotoURL != "" {
			err := s.SendPhoto(ctx, chatID, listing.PhotoURL, text)
			if err == nil {
				return nil
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"chat_id": chatID,
				"photo":   listing.PhotoURL,
			}).Warn("Photo delivery failed, falling back to text")
		}
		return s.SendMessage(ctx, chatID, text)
	})
}

// SendTest sends a connectivity message describing what is being watched
func (s *Service) SendTest(ctx context.Context) error {
	recipients, err := s.checkConfig()
	if err != nil {
		return err
	}

	text := TestMessage(s.profile)
	return s.broadcast(recipients, func(chatID string) error {
		return s.SendMessage(ctx, chatID, text)
	})
}

func (s *Service) broadcast(recipients []string, send func(chatID string) error) error {
	var errs []error
	delivered := 0
	for _, chatID := range recipients {
		if err := send(chatID); err != nil {
			s.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to deliver Telegram message")
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return errors.Join(errs...)
	}
	return nil
}

// TestMessage renders the connectivity check text
func TestMessage(profile config.SearchProfile) string {
	p := message.NewPrinter(language.English)
	c := profile.Criteria
	return p.Sprintf(
		"🤖 <b>Rental Hunter is connected!</b>\n\n"+
			"📍 Watching: %s\n"+
			"🏠 Type: %s\n"+
			"📐 Min size: %d sqft\n"+
			"💰 Max rent: $%d/month\n\n"+
			"You'll be notified when new listings appear.",
		profile.Metro.Name,
		c.PropertyType,
		c.MinSqft,
		c.MaxRent,
	)
}
