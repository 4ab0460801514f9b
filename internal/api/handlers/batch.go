package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/batch"
)

type BatchHandler struct {
	svc *batch.Service
}

func NewBatchHandler(svc *batch.Service) *BatchHandler {
	return &BatchHandler{svc: svc}
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	batches, err := h.svc.List(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"batches": batches, "count": len(batches)})
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	batchID, ok := idParam(w, r, "batchID")
	if !ok {
		return
	}

	b, err := h.svc.Get(r.Context(), user.ID, companyID, batchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	var req struct {
		CommodityID uuid.UUID `json:"commodity_id"`
		LotCode     string    `json:"lot_code"`
		HarvestDate time.Time `json:"harvest_date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	b, err := h.svc.Create(r.Context(), user.ID, companyID, req.CommodityID, req.LotCode, req.HarvestDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	batchID, ok := idParam(w, r, "batchID")
	if !ok {
		return
	}

	var req struct {
		LotCode     string    `json:"lot_code"`
		HarvestDate time.Time `json:"harvest_date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	b, err := h.svc.Update(r.Context(), user.ID, companyID, batchID, req.LotCode, req.HarvestDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	batchID, ok := idParam(w, r, "batchID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, companyID, batchID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *BatchHandler) ListRelations(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	batchID, ok := idParam(w, r, "batchID")
	if !ok {
		return
	}

	relations, err := h.svc.ListRelations(r.Context(), user.ID, companyID, batchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"relations": relations, "count": len(relations)})
}

func (h *BatchHandler) CreateRelation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	batchID, ok := idParam(w, r, "batchID")
	if !ok {
		return
	}

	var req struct {
		ChildBatchID uuid.UUID `json:"child_batch_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	rel, err := h.svc.CreateRelation(r.Context(), user.ID, companyID, batchID, req.ChildBatchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}
