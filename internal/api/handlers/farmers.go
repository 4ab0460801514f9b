package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/farmer"
)

type FarmerHandler struct {
	svc *farmer.Service
}

func NewFarmerHandler(svc *farmer.Service) *FarmerHandler {
	return &FarmerHandler{svc: svc}
}

type farmerRequest struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	NationalID  string      `json:"national_id"`
	PhoneNumber string      `json:"phone_number"`
	Address     string      `json:"address"`
	GroupIDs    []uuid.UUID `json:"group_ids"`
}

func (r farmerRequest) input() farmer.Input {
	return farmer.Input{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		NationalID:  r.NationalID,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		GroupIDs:    r.GroupIDs,
	}
}

func (h *FarmerHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	farmers, err := h.svc.List(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"farmers": farmers, "count": len(farmers)})
}

func (h *FarmerHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	farmerID, ok := idParam(w, r, "farmerID")
	if !ok {
		return
	}

	f, err := h.svc.Get(r.Context(), user.ID, companyID, farmerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FarmerHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	var req farmerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.svc.Create(r.Context(), user.ID, companyID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *FarmerHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	farmerID, ok := idParam(w, r, "farmerID")
	if !ok {
		return
	}

	var req farmerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.svc.Update(r.Context(), user.ID, companyID, farmerID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FarmerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	farmerID, ok := idParam(w, r, "farmerID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, companyID, farmerID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type groupRequest struct {
	Name      string      `json:"name"`
	FarmerIDs []uuid.UUID `json:"farmer_ids"`
}

func (h *FarmerHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	groups, err := h.svc.ListGroups(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups, "count": len(groups)})
}

func (h *FarmerHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	groupID, ok := idParam(w, r, "groupID")
	if !ok {
		return
	}

	g, err := h.svc.GetGroup(r.Context(), user.ID, companyID, groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *FarmerHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.svc.CreateGroup(r.Context(), user.ID, companyID, farmer.GroupInput{Name: req.Name, FarmerIDs: req.FarmerIDs})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *FarmerHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	groupID, ok := idParam(w, r, "groupID")
	if !ok {
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.svc.UpdateGroup(r.Context(), user.ID, companyID, groupID, farmer.GroupInput{Name: req.Name, FarmerIDs: req.FarmerIDs})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *FarmerHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	groupID, ok := idParam(w, r, "groupID")
	if !ok {
		return
	}

	if err := h.svc.DeleteGroup(r.Context(), user.ID, companyID, groupID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
