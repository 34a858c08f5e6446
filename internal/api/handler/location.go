package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/domain"
	"github.com/caden/captionator/internal/repository"
	"github.com/caden/captionator/internal/service"
)

// locationStore is the repository slice the location handler needs.
type locationStore interface {
	ListResearched(ctx context.Context) ([]domain.Location, error)
	GetByID(ctx context.Context, id uint) (*domain.Location, error)
	Delete(ctx context.Context, id uint) error
}

// locationResearcher runs standalone locale research and persists it.
type locationResearcher interface {
	ResearchLocation(ctx context.Context, address string) (*domain.Location, error)
}

// LocationHandler serves the saved-location endpoints.
type LocationHandler struct {
	locations  locationStore
	researcher locationResearcher
}

// NewLocationHandler creates a location handler.
func NewLocationHandler(locations locationStore, researcher locationResearcher) *LocationHandler {
	return &LocationHandler{locations: locations, researcher: researcher}
}

// ListLocations handles GET /api/v1/locations. Only locations with
// completed research are returned.
func (h *LocationHandler) ListLocations(c *gin.Context) {
	locations, err := h.locations.ListResearched(c.Request.Context())
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindPersistence, "failed to list locations", err))
		return
	}

	items := make([]gin.H, 0, len(locations))
	for _, loc := range locations {
		items = append(items, gin.H{
			"id":      loc.ID,
			"address": loc.Address,
			"city":    loc.City,
			"state":   loc.State,
			"display": loc.Display(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"locations": items})
}

// GetLocation handles GET /api/v1/locations/:id.
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, err := parseLocationID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	location, err := h.locations.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, apperr.New(apperr.KindNotFound, "location not found"))
			return
		}
		respondError(c, apperr.Wrap(apperr.KindPersistence, "failed to load location", err))
		return
	}

	c.JSON(http.StatusOK, location)
}

// DeleteLocation handles DELETE /api/v1/locations/:id.
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, err := parseLocationID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.locations.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, apperr.New(apperr.KindNotFound, "location not found"))
			return
		}
		respondError(c, apperr.Wrap(apperr.KindPersistence, "failed to delete location", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Location deleted"})
}

// ResearchLocation handles POST /api/v1/research-location. Runs parse
// plus locale research for an address and persists the result.
func (h *LocationHandler) ResearchLocation(c *gin.Context) {
	address := strings.TrimSpace(c.PostForm("address"))
	if address == "" {
		respondError(c, apperr.New(apperr.KindInvalidInput, "address is required"))
		return
	}

	location, err := h.researcher.ResearchLocation(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      location.ID,
		"address": location.Address,
		"location_info": service.LocationInfo{
			City:         location.City,
			State:        location.State,
			IsRural:      location.IsRural,
			FullResearch: location.Research,
		},
	})
}

func parseLocationID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInvalidInput, "invalid location id", err)
	}
	return uint(id), nil
}
