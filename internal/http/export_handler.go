package httpapi

import (
	"bytes"
	"net/http"
	"strconv"

	"stroke-warning-system/internal/service"

	"go.uber.org/zap"
)

const exportFilename = "patient_data"

// ExportHandler streams filtered patient records as JSON, CSV or XLSX.
type ExportHandler struct {
	exportService service.ExportService
	logger        *zap.Logger
}

func NewExportHandler(exportService service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req service.ExportRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Invalid JSON body"))
		return
	}
	req.RequestedBy = usernameFrom(r.Context())

	res, err := h.exportService.Export(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}

	switch res.Format {
	case service.FormatCSV:
		var buf bytes.Buffer
		if err := writePatientsCSV(&buf, res.Records); err != nil {
			writeServiceError(w, h.logger, r, err)
			return
		}
		writeAttachment(w, "text/csv; charset=utf-8", exportFilename+".csv", buf.Bytes())
	case service.FormatXLSX:
		data, err := generatePatientsExcel(res.Records)
		if err != nil {
			writeServiceError(w, h.logger, r, err)
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", exportFilename+".xlsx", data)
	default:
		writeJSON(w, http.StatusOK, Ok(res.Records))
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
