package models

import "time"

// SeenListing is the persisted record of a listing that has already been announced
type SeenListing struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	NormalizedAddress string    `gorm:"uniqueIndex;not null" json:"normalized_address"`
	OriginalAddress   string    `json:"original_address"`
	Price             int       `json:"price"`
	Source            Source    `gorm:"index" json:"source"`
	URL               string    `json:"url"`
	FirstSeenAt       time.Time `json:"first_seen_at"`
	LastSeenAt        time.Time `json:"last_seen_at"`
}

func (SeenListing) TableName() string {
	return "seen_listings"
}

// NewSeenListing builds the store record for a listing observed at now
func NewSeenListing(l Listing, now time.Time) SeenListing {
	return SeenListing{
		NormalizedAddress: l.AddressKey(),
		OriginalAddress:   l.FullAddress(),
		Price:             l.Price,
		Source:            l.Source,
		URL:               l.URL,
		FirstSeenAt:       now,
		LastSeenAt:        now,
	}
}

type SourceCount struct {
	Source Source `json:"source"`
	Count  int64  `json:"count"`
}

type SeenStats struct {
	Total    int64         `json:"total"`
	BySource []SourceCount `json:"by_source"`
	Recent   []SeenListing `json:"recent"`
}
