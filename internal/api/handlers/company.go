package handlers

import (
	"net/http"
	"strconv"

	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/billing"
	"github.com/hasiltani/agritrace/internal/company"
)

type CompanyHandler struct {
	svc     *company.Service
	billing *billing.Service
	audit   *audit.Service
}

func NewCompanyHandler(svc *company.Service, bill *billing.Service, aud *audit.Service) *CompanyHandler {
	return &CompanyHandler{svc: svc, billing: bill, audit: aud}
}

func (h *CompanyHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.svc.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	views, err := h.svc.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"companies": views, "count": len(views)})
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	view, members, err := h.svc.Get(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]interface{}{"company": view}
	if members != nil {
		resp["members"] = members
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	}
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateName(r.Context(), user.ID, companyID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, companyID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CompanyHandler) SearchUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	email := r.URL.Query().Get("email")
	user, err := h.svc.SearchUserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *CompanyHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	perms, err := h.svc.Permissions(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms, "count": len(perms)})
}

func (h *CompanyHandler) Billing(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	status, err := h.billing.Status(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// AuditLogs is owner-only; the log records every member's mutations.
func (h *CompanyHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	if err := h.svc.RequireOwner(r.Context(), user.ID, companyID); err != nil {
		writeError(w, r, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.audit.List(r.Context(), companyID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs, "count": len(logs)})
}
