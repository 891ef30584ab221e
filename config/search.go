package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownMetro    = errors.New("unknown metro")
	ErrInvalidCriteria = errors.New("invalid search criteria")
)

// Criteria are the fixed filters every source search encodes
type Criteria struct {
	MinSqft      int    `yaml:"min_sqft" json:"min_sqft"`
	MaxRent      int    `yaml:"max_rent" json:"max_rent"`
	PropertyType string `yaml:"property_type" json:"property_type"`
	Sort         string `yaml:"sort" json:"sort"`
}

// SourceEndpoints holds the base URL of every source site
type SourceEndpoints struct {
	Zillow  string `yaml:"zillow" json:"zillow"`
	Redfin  string `yaml:"redfin" json:"redfin"`
	Realtor string `yaml:"realtor" json:"realtor"`
}

// SearchProfile is what to search for and where
type SearchProfile struct {
	MetroSlug string          `yaml:"metro"`
	Metro     Metro           `yaml:"-"`
	Criteria  Criteria        `yaml:"criteria"`
	Endpoints SourceEndpoints `yaml:"endpoints"`
}

// DefaultSearchProfile returns the built-in St. Petersburg profile
func DefaultSearchProfile() SearchProfile {
	return SearchProfile{
		MetroSlug: SupportedMetros[0].Slug,
		Metro:     SupportedMetros[0],
		Criteria: Criteria{
			MinSqft:      1500,
			MaxRent:      7000,
			PropertyType: "house",
			Sort:         "newest",
		},
		Endpoints: SourceEndpoints{
			Zillow:  "https://www.zillow.com",
			Redfin:  "https://www.redfin.com",
			Realtor: "https://www.realtor.com",
		},
	}
}

// LoadSearchProfile reads a YAML profile layered over the defaults.
// An empty path returns the defaults unchanged.
func LoadSearchProfile(path string) (SearchProfile, error) {
	profile := DefaultSearchProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read search profile: %w", err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse search profile: %w", err)
	}

	metro := GetMetroBySlug(profile.MetroSlug)
	if metro == nil {
		return profile, fmt.Errorf("%w: %q", ErrUnknownMetro, profile.MetroSlug)
	}
	profile.Metro = *metro

	if err := profile.Validate(); err != nil {
		return profile, err
	}
	return profile, nil
}

// Validate checks that the criteria can be encoded into source searches
func (p SearchProfile) Validate() error {
	if p.Criteria.MinSqft < 0 {
		return fmt.Errorf("%w: min_sqft must not be negative", ErrInvalidCriteria)
	}
	if p.Criteria.MaxRent <= 0 {
		return fmt.Errorf("%w: max_rent must be positive", ErrInvalidCriteria)
	}
	if p.Metro.City == "" || p.Metro.State == "" {
		return fmt.Errorf("%w: metro has no city or state", ErrUnknownMetro)
	}
	return nil
}
