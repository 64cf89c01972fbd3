// internal/app/system/csvutil/trips.go
package csvutil

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/natpac/tripcollect/internal/domain/models"
)

// TripCSVFilename is the download name of the research export.
const TripCSVFilename = "natpac_trip_data.csv"

// TripCSVHeader is the fixed nine-column export header. Column order is
// part of the export contract and must not change.
var TripCSVHeader = []string{
	"Trip ID",
	"User ID",
	"Trip Number",
	"Origin",
	"Destination",
	"Mode",
	"Start Time",
	"End Time",
	"Companions",
}

// WriteTrips streams trips to w as CSV: a UTF-8 BOM (so Excel treats the
// file as Unicode), the fixed header, then one row per trip with CRLF line
// endings. Free-text fields with embedded commas or quotes come out quoted
// per RFC 4180.
func WriteTrips(w io.Writer, trips []models.Trip) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(TripCSVHeader); err != nil {
		return err
	}
	for _, t := range trips {
		if err := cw.Write(tripRow(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func tripRow(t models.Trip) []string {
	return []string{
		t.ID.Hex(),
		t.UserID.Hex(),
		t.TripNumber,
		t.Origin,
		t.Destination,
		t.Mode,
		formatTime(t.StartTime),
		formatTime(t.EndTime),
		t.Companions,
	}
}

// formatTime renders an optional timestamp as RFC 3339, or "" when absent.
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
