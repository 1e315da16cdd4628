package handlers

import (
	"errors"
	"net/http"

	"github.com/fantasy-arena/backend/middleware"
	"github.com/fantasy-arena/backend/services"
)

const maxCrestSize = 2 << 20 // 2MB

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Division string `json:"division"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	var ownerID *int
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		ownerID = &id
	}

	team, err := h.teamService.Create(r.Context(), input.Name, input.Division, ownerID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"team": team})
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	team, err := h.teamService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"team": team})
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	var division *string
	if raw := r.URL.Query().Get("division"); raw != "" {
		division = &raw
	}
	includeBots := r.URL.Query().Get("include_bots") == "true"

	teams, err := h.teamService.List(r.Context(), division, includeBots)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"teams": teams})
}

// UploadCrest accepts a multipart form with a "crest" file field.
func (h *TeamHandler) UploadCrest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxCrestSize); err != nil {
		badRequestResponse(w, errors.New("failed to parse multipart form"))
		return
	}
	file, header, err := r.FormFile("crest")
	if err != nil {
		badRequestResponse(w, errors.New("crest file field is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	team, err := h.teamService.UploadCrest(r.Context(), id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"team": team})
}
