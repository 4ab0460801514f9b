package handlers

import (
	"net/http"

	"github.com/hasiltani/agritrace/internal/commodity"
)

type CommodityHandler struct {
	svc *commodity.Service
}

func NewCommodityHandler(svc *commodity.Service) *CommodityHandler {
	return &CommodityHandler{svc: svc}
}

func (h *CommodityHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	commodities, err := h.svc.List(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"commodities": commodities, "count": len(commodities)})
}

func (h *CommodityHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	commodityID, ok := idParam(w, r, "commodityID")
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), user.ID, companyID, commodityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommodityHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), user.ID, companyID, req.Name, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CommodityHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	commodityID, ok := idParam(w, r, "commodityID")
	if !ok {
		return
	}

	var req struct {
		Name *string `json:"name"`
		Code *string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.svc.Update(r.Context(), user.ID, companyID, commodityID, req.Name, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommodityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	commodityID, ok := idParam(w, r, "commodityID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, companyID, commodityID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
