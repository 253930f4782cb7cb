package httpapi

import (
	"net/http"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/models"
	"stroke-warning-system/internal/service"

	"go.uber.org/zap"
)

// PatientHandler serves the doctor dashboard and the patient API.
type PatientHandler struct {
	patientService service.PatientService
	logger         *zap.Logger
}

func NewPatientHandler(patientService service.PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{patientService: patientService, logger: logger}
}

type doctorDashboard struct {
	Username   string
	Patients   []domain.PatientRecord
	Pagination models.Pagination
}

func listRequest(r *http.Request) service.ListPatientsRequest {
	q := r.URL.Query()
	return service.ListPatientsRequest{
		Page:     parseInt(q.Get("page"), 1),
		PageSize: parseInt(q.Get("pageSize"), models.DefaultPageSize),
	}
}

func (h *PatientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.patientService.ListPatients(r.Context(), listRequest(r))
	if err != nil {
		h.logger.Error("Failed to load doctor dashboard", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	renderPage(w, h.logger, http.StatusOK, "doctor_dashboard.html", doctorDashboard{
		Username:   usernameFrom(r.Context()),
		Patients:   resp.Items,
		Pagination: resp.Pagination,
	})
}

func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	resp, err := h.patientService.ListPatients(r.Context(), listRequest(r))
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *PatientHandler) AddPatient(w http.ResponseWriter, r *http.Request) {
	var req service.AddPatientRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Invalid JSON body"))
		return
	}
	req.CreatedBy = usernameFrom(r.Context())

	pred, err := h.patientService.AddPatient(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Patient added successfully", pred))
}

func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req service.UpdatePatientRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Invalid JSON body"))
		return
	}
	req.UpdatedBy = usernameFrom(r.Context())

	pred, err := h.patientService.UpdatePatient(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Patient updated successfully", pred))
}
