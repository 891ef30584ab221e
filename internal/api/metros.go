package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentalhunter/config"
)

type metroResponse struct {
	config.Metro
	Active bool `json:"active"`
}

// MetroHandler exposes the supported metros and which one is being searched
type MetroHandler struct {
	profile config.SearchProfile
}

func NewMetroHandler(profile config.SearchProfile) *MetroHandler {
	return &MetroHandler{profile: profile}
}

// ListMetros returns all supported metros
func (h *MetroHandler) ListMetros(c *gin.Context) {
	metros := make([]metroResponse, 0, len(config.SupportedMetros))
	for _, m := range config.SupportedMetros {
		metros = append(metros, metroResponse{Metro: m, Active: m.Slug == h.profile.Metro.Slug})
	}
	c.JSON(http.StatusOK, metros)
}

// GetMetro returns one metro by slug
func (h *MetroHandler) GetMetro(c *gin.Context) {
	metro := config.GetMetroBySlug(c.Param("slug"))
	if metro == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Metro not found"})
		return
	}
	c.JSON(http.StatusOK, metroResponse{Metro: *metro, Active: metro.Slug == h.profile.Metro.Slug})
}

// GetSearchProfile returns the criteria every source search encodes
func (h *MetroHandler) GetSearchProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metro":     h.profile.Metro.Name,
		"criteria":  h.profile.Criteria,
		"endpoints": h.profile.Endpoints,
	})
}
