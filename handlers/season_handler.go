package handlers

import (
	"net/http"
	"strconv"

	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
	"github.com/fantasy-arena/backend/services"
)

type SeasonHandler struct {
	seasonService *services.SeasonService
	standings     *services.StandingsService
}

func NewSeasonHandler(seasonService *services.SeasonService, standings *services.StandingsService) *SeasonHandler {
	return &SeasonHandler{seasonService: seasonService, standings: standings}
}

// GetCurrent returns the active season with its day cursor.
func (h *SeasonHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonService.GetCurrent(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"season": season})
}

// ListMatches returns a season's matches. Optional query parameters: day,
// status, type.
func (h *SeasonHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	seasonID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var filter repositories.ListMatchesFilter
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 1 {
			badRequestResponse(w, errInvalidQueryParam("day"))
			return
		}
		filter.Day = &day
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		matchType := models.MatchType(raw)
		filter.MatchType = &matchType
	}

	matches, err := h.seasonService.ListMatches(r.Context(), seasonID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"matches": matches})
}

// GetStandings returns the live league table of a season.
func (h *SeasonHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	seasonID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if _, err := h.seasonService.GetByID(r.Context(), seasonID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	table, err := h.standings.ComputeTable(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"standings": table})
}
