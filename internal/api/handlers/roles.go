package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/company"
)

type RoleHandler struct {
	svc *company.Service
}

func NewRoleHandler(svc *company.Service) *RoleHandler {
	return &RoleHandler{svc: svc}
}

type roleRequest struct {
	Name          string   `json:"name"`
	PermissionIDs []string `json:"permission_ids"`
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	roles, err := h.svc.ListRoles(r.Context(), user.ID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"roles": roles, "count": len(roles)})
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	roleID, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}

	role, err := h.svc.GetRole(r.Context(), user.ID, companyID, roleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	var req roleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	role, err := h.svc.CreateRole(r.Context(), user.ID, companyID, req.Name, req.PermissionIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	roleID, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}

	var req roleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	role, err := h.svc.UpdateRole(r.Context(), user.ID, companyID, roleID, req.Name, req.PermissionIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	roleID, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}

	if err := h.svc.DeleteRole(r.Context(), user.ID, companyID, roleID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type MemberHandler struct {
	svc *company.Service
}

func NewMemberHandler(svc *company.Service) *MemberHandler {
	return &MemberHandler{svc: svc}
}

func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}

	var req struct {
		UserID  uuid.UUID   `json:"user_id"`
		RoleIDs []uuid.UUID `json:"role_ids"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.AddMember(r.Context(), user.ID, companyID, req.UserID, req.RoleIDs); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	targetID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	var req struct {
		RoleID uuid.UUID `json:"role_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.UpdateMemberRole(r.Context(), user.ID, companyID, targetID, req.RoleID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := idParam(w, r, "companyID")
	if !ok {
		return
	}
	targetID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(r.Context(), user.ID, companyID, targetID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
