package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/batch"
)

type sourceRequest struct {
	FarmerGroupID *uuid.UUID      `json:"farmer_group_id"`
	LandID        *uuid.UUID      `json:"land_id"`
	VolumeKg      *float64        `json:"volume_kg"`
	LandSnapshot  json.RawMessage `json:"land_snapshot"`
}

func (r sourceRequest) input() batch.SourceInput {
	return batch.SourceInput{
		FarmerGroupID: r.FarmerGroupID,
		LandID:        r.LandID,
		VolumeKg:      r.VolumeKg,
		LandSnapshot:  r.LandSnapshot,
	}
}

func (h *BatchHandler) ListSources(w http.ResponseWriter, r *http.Request) {
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

	sources, err := h.svc.ListSources(r.Context(), user.ID, companyID, batchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sources": sources, "count": len(sources)})
}

func (h *BatchHandler) GetSource(w http.ResponseWriter, r *http.Request) {
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
	sourceID, ok := idParam(w, r, "sourceID")
	if !ok {
		return
	}

	source, err := h.svc.GetSource(r.Context(), user.ID, companyID, batchID, sourceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, source)
}

func (h *BatchHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
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

	var req sourceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	source, err := h.svc.CreateSource(r.Context(), user.ID, companyID, batchID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, source)
}

func (h *BatchHandler) UpdateSource(w http.ResponseWriter, r *http.Request) {
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
	sourceID, ok := idParam(w, r, "sourceID")
	if !ok {
		return
	}

	var req sourceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	source, err := h.svc.UpdateSource(r.Context(), user.ID, companyID, batchID, sourceID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, source)
}

func (h *BatchHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
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
	sourceID, ok := idParam(w, r, "sourceID")
	if !ok {
		return
	}

	if err := h.svc.DeleteSource(r.Context(), user.ID, companyID, batchID, sourceID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type attributeRequest struct {
	Key        *string    `json:"key"`
	Value      *string    `json:"value"`
	Unit       *string    `json:"unit"`
	RecordedAt *time.Time `json:"recorded_at"`
}

func (r attributeRequest) input() batch.AttributeInput {
	return batch.AttributeInput{
		Key:        r.Key,
		Value:      r.Value,
		Unit:       r.Unit,
		RecordedAt: r.RecordedAt,
	}
}

func (h *BatchHandler) ListAttributes(w http.ResponseWriter, r *http.Request) {
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

	attrs, err := h.svc.ListAttributes(r.Context(), user.ID, companyID, batchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attributes": attrs, "count": len(attrs)})
}

func (h *BatchHandler) GetAttribute(w http.ResponseWriter, r *http.Request) {
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
	attributeID, ok := idParam(w, r, "attributeID")
	if !ok {
		return
	}

	attr, err := h.svc.GetAttribute(r.Context(), user.ID, companyID, batchID, attributeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attr)
}

func (h *BatchHandler) CreateAttribute(w http.ResponseWriter, r *http.Request) {
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

	var req attributeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	attr, err := h.svc.CreateAttribute(r.Context(), user.ID, companyID, batchID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attr)
}

func (h *BatchHandler) UpdateAttribute(w http.ResponseWriter, r *http.Request) {
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
	attributeID, ok := idParam(w, r, "attributeID")
	if !ok {
		return
	}

	var req attributeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	attr, err := h.svc.UpdateAttribute(r.Context(), user.ID, companyID, batchID, attributeID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attr)
}

func (h *BatchHandler) DeleteAttribute(w http.ResponseWriter, r *http.Request) {
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
	attributeID, ok := idParam(w, r, "attributeID")
	if !ok {
		return
	}

	if err := h.svc.DeleteAttribute(r.Context(), user.ID, companyID, batchID, attributeID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
