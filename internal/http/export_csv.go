package httpapi

import (
	"encoding/csv"
	"fmt"
	"io"

	"stroke-warning-system/internal/domain"
)

// writePatientsCSV writes a header row even when records is empty.
func writePatientsCSV(w io.Writer, records []domain.PatientRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.RecordColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Values()); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
