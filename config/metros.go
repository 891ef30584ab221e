package config

import "github.com/paulmach/orb"

// Bounds is the lat/lng box a metro's listings must fall within
type Bounds struct {
	South float64 `yaml:"south" json:"south"`
	North float64 `yaml:"north" json:"north"`
	West  float64 `yaml:"west" json:"west"`
	East  float64 `yaml:"east" json:"east"`
}

// Bound converts the box to an orb.Bound (x is longitude, y is latitude)
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// Metro describes a search area and the identifiers each source uses for it
type Metro struct {
	Name  string `yaml:"name" json:"name"`
	City  string `yaml:"city" json:"city"`
	State string `yaml:"state" json:"state"`
	Slug  string `yaml:"slug" json:"slug"`

	Bounds Bounds `yaml:"bounds" json:"bounds"`

	RedfinRegionID   int    `yaml:"redfin_region_id" json:"redfin_region_id"`
	RedfinRegionType int    `yaml:"redfin_region_type" json:"redfin_region_type"`
	RedfinCityPath   string `yaml:"redfin_city_path" json:"redfin_city_path"`
}

// SupportedMetros is a list of metros with known source identifiers
var SupportedMetros = []Metro{
	{
		Name:  "St. Petersburg, FL",
		City:  "St Petersburg",
		State: "FL",
		Slug:  "st-petersburg-fl",
		Bounds: Bounds{
			South: 27.65,
			North: 27.85,
			West:  -82.78,
			East:  -82.55,
		},
		RedfinRegionID:   17193,
		RedfinRegionType: 6,
		RedfinCityPath:   "/city/17193/FL/St-Petersburg",
	},
}

// GetMetroSlugs returns the slugs of all supported metros
func GetMetroSlugs() []string {
	slugs := make([]string, len(SupportedMetros))
	for i, metro := range SupportedMetros {
		slugs[i] = metro.Slug
	}
	return slugs
}

// GetMetroBySlug returns a metro configuration by slug
func GetMetroBySlug(slug string) *Metro {
	for _, metro := range SupportedMetros {
		if metro.Slug == slug {
			return &metro
		}
	}
	return nil
}
