// internal/app/features/research/handler.go
package research

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	tripstore "github.com/natpac/tripcollect/internal/app/store/trips"
	"github.com/natpac/tripcollect/internal/app/system/csvutil"
	"github.com/natpac/tripcollect/internal/app/system/timeouts"
	"github.com/natpac/tripcollect/internal/app/system/viewdata"
	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TripLister is the slice of the trip store the research view needs.
type TripLister interface {
	ListAll(ctx context.Context) ([]models.Trip, error)
}

type Handler struct {
	Trips  TripLister
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Trips:  tripstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type tripRow struct {
	Origin      string
	Destination string
	ModeLabel   string
	Companions  string
	Created     string
}

type researchData struct {
	viewdata.BaseVM
	Search string
	Mode   string
	Modes  []models.TravelMode

	Trips []tripRow
	Stats Stats

	TopModeLabel string
	ExportURL    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /research                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeResearch(w http.ResponseWriter, r *http.Request) {
	f := Filter{
		Search: query.Get(r, "search"),
		Mode:   query.Get(r, "mode"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Trips.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list all trips", err, "Could not load trip data.", "/dashboard")
		return
	}

	filtered := f.Apply(all)
	stats := ComputeStats(filtered)

	data := researchData{
		BaseVM:       viewdata.NewBaseVM(r, "Research view", "/dashboard"),
		Search:       f.Search,
		Mode:         f.Mode,
		Modes:        models.TravelModes,
		Trips:        make([]tripRow, 0, len(filtered)),
		Stats:        stats,
		TopModeLabel: models.ModeLabel(stats.TopMode),
		ExportURL:    exportURL(f),
	}
	for _, t := range filtered {
		data.Trips = append(data.Trips, tripRow{
			Origin:      t.Origin,
			Destination: t.Destination,
			ModeLabel:   models.ModeLabel(t.Mode),
			Companions:  t.Companions,
			Created:     t.CreatedAt.Local().Format("2 Jan 2006 15:04"),
		})
	}

	templates.Render(w, r, "research", data)
}

// exportURL carries the on-screen filters over to the download link.
func exportURL(f Filter) string {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Mode != "" && f.Mode != "all" {
		q.Set("mode", f.Mode)
	}
	u := "/research/export.csv"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /research/export.csv                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeExportCSV downloads the filtered trip set. The same filter params as
// the HTML view apply, so the file matches what is on screen.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	f := Filter{
		Search: query.Get(r, "search"),
		Mode:   query.Get(r, "mode"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	all, err := h.Trips.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list all trips", err, "Could not export trip data.", "/research")
		return
	}
	filtered := f.Apply(all)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvutil.TripCSVFilename+`"`)

	if err := csvutil.WriteTrips(w, filtered); err != nil {
		// Headers are gone; all we can do is log.
		h.Log.Error("CSV export write failed", zap.Error(err))
	}
}
