package handlers

import (
	"net/http"

	"github.com/hasiltani/agritrace/internal/land"
)

type LandHandler struct {
	svc *land.Service
}

func NewLandHandler(svc *land.Service) *LandHandler {
	return &LandHandler{svc: svc}
}

type landRequest struct {
	Name                string  `json:"name"`
	AreaHectares        float64 `json:"area_hectares"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	Location            string  `json:"location"`
	GeoPolygon          string  `json:"geo_polygon"`
	IsDeforestationFree bool    `json:"is_deforestation_free"`
}

func (r landRequest) input() land.Input {
	return land.Input{
		Name:                r.Name,
		AreaHectares:        r.AreaHectares,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		Location:            r.Location,
		GeoPolygon:          r.GeoPolygon,
		IsDeforestationFree: r.IsDeforestationFree,
	}
}

func (h *LandHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	lands, err := h.svc.List(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lands": lands, "count": len(lands)})
}

func (h *LandHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	landID, ok := idParam(w, r, "landID")
	if !ok {
		return
	}

	l, err := h.svc.Get(r.Context(), user.ID, companyID, landID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LandHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	var req landRequest
	if !decodeBody(w, r, &req) {
		return
	}

	l, err := h.svc.Create(r.Context(), user.ID, companyID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *LandHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	landID, ok := idParam(w, r, "landID")
	if !ok {
		return
	}

	var req landRequest
	if !decodeBody(w, r, &req) {
		return
	}

	l, err := h.svc.Update(r.Context(), user.ID, companyID, landID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	landID, ok := idParam(w, r, "landID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, companyID, landID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
