package models

import "strings"

// TelegramConfig stores the bot credentials and its recipients
type TelegramConfig struct {
	BotToken string   `json:"-"`
	ChatIDs  []string `json:"chat_ids"`
	APIURL   string   `json:"api_url"`
}

// Recipients returns the non-empty chat IDs with surrounding spaces removed
func (c *TelegramConfig) Recipients() []string {
	if c == nil {
		return nil
	}
	var ids []string
	for _, id := range c.ChatIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsConfigured reports whether messages can be delivered at all
func (c *TelegramConfig) IsConfigured() bool {
	return c != nil && c.BotToken != "" && len(c.Recipients()) > 0
}
