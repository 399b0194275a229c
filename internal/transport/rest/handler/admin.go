package handler

import (
	"net/http"

	"gatechat/internal/service"
)

// AdminHandler serves the admin console's registry views
type AdminHandler struct {
	admission *service.AdmissionService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admission *service.AdmissionService) *AdminHandler {
	return &AdminHandler{admission: admission}
}

// Sessions handles GET /v1/admin/sessions
func (h *AdminHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.admission.Snapshot())
}
