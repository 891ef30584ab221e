package models

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rentalhunter/internal/normalize"
)

// Source identifies the site a listing was scraped from
type Source string

const (
	SourceZillow  Source = "zillow"
	SourceRedfin  Source = "redfin"
	SourceRealtor Source = "realtor"
)

// Sources lists every registered source in registration order
var Sources = []Source{SourceZillow, SourceRedfin, SourceRealtor}

// IsValid reports whether s is a registered source
func (s Source) IsValid() bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the display name of the source
func (s Source) Label() string {
	switch s {
	case SourceZillow:
		return "Zillow"
	case SourceRedfin:
		return "Redfin"
	case SourceRealtor:
		return "Realtor"
	default:
		return string(s)
	}
}

var (
	ErrMissingStreet  = errors.New("listing has no street address")
	ErrMissingCity    = errors.New("listing has no city")
	ErrInvalidPrice   = errors.New("listing price must be positive")
	ErrUnknownSource  = errors.New("listing source is not registered")
	ErrNegativeNumber = errors.New("listing has a negative numeric field")
)

// Listing is one rental observation from one source
type Listing struct {
	Street     string   `json:"street"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Price      int      `json:"price"`
	Beds       *int     `json:"beds"`
	Baths      *float64 `json:"baths"`
	Sqft       *int     `json:"sqft"`
	URL        string   `json:"url"`
	PhotoURL   string   `json:"photo_url,omitempty"`
	Source     Source   `json:"source"`
}

// Validate checks the invariants every constructed listing must hold
func (l Listing) Validate() error {
	if strings.TrimSpace(l.Street) == "" {
		return ErrMissingStreet
	}
	if strings.TrimSpace(l.City) == "" {
		return ErrMissingCity
	}
	if l.Price <= 0 {
		return ErrInvalidPrice
	}
	if !l.Source.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownSource, l.Source)
	}
	if (l.Beds != nil && *l.Beds < 0) || (l.Baths != nil && *l.Baths < 0) || (l.Sqft != nil && *l.Sqft < 0) {
		return ErrNegativeNumber
	}
	return nil
}

// AddressKey returns the normalized address used for deduplication
func (l Listing) AddressKey() string {
	return normalize.Address(l.Street, l.City, l.State, l.PostalCode)
}

// FullAddress renders the address as "street, city, ST zip"
func (l Listing) FullAddress() string {
	parts := []string{l.Street}
	if l.City != "" {
		parts = append(parts, l.City)
	}
	region := strings.TrimSpace(l.State + " " + l.PostalCode)
	if region != "" {
		parts = append(parts, region)
	}
	return strings.Join(parts, ", ")
}

// Details renders the known bed, bath and area figures, e.g. "3 bed | 2.5 bath | 1,850 sqft"
func (l Listing) Details() string {
	printer := message.NewPrinter(language.English)
	var parts []string
	if l.Beds != nil {
		parts = append(parts, fmt.Sprintf("%d bed", *l.Beds))
	}
	if l.Baths != nil {
		parts = append(parts, strconv.FormatFloat(*l.Baths, 'f', -1, 64)+" bath")
	}
	if l.Sqft != nil {
		parts = append(parts, printer.Sprintf("%d sqft", *l.Sqft))
	}
	return strings.Join(parts, " | ")
}

// FormatAlert builds the HTML notification text for a new listing
func (l Listing) FormatAlert() string {
	var b strings.Builder
	b.WriteString("🏠 <b>New Rental Listing!</b>\n\n")
	b.WriteString("📍 " + html.EscapeString(l.Street) + "\n")

	locality := l.City
	if region := strings.TrimSpace(l.State + " " + l.PostalCode); region != "" {
		if locality != "" {
			locality += ", "
		}
		locality += region
	}
	if locality != "" {
		b.WriteString("     " + html.EscapeString(locality) + "\n")
	}

	b.WriteString(message.NewPrinter(language.English).Sprintf("💰 $%d/month\n", l.Price))
	if details := l.Details(); details != "" {
		b.WriteString("🛏 " + details + "\n")
	}
	b.WriteString("🔎 Source: " + l.Source.Label() + "\n")

	if l.URL != "" {
		b.WriteString(fmt.Sprintf("\n🔗 <a href=\"%s\">View Listing</a>", html.EscapeString(l.URL)))
	}
	return b.String()
}
