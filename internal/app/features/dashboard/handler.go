// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	tripstore "github.com/natpac/tripcollect/internal/app/store/trips"
	"github.com/natpac/tripcollect/internal/app/system/authz"
	"github.com/natpac/tripcollect/internal/app/system/timeouts"
	"github.com/natpac/tripcollect/internal/app/system/viewdata"
	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TripLister is the slice of the trip store the dashboard needs.
type TripLister interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Trip, error)
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
	TripNumber  string
	StartTime   string
	EndTime     string
	Companions  string
	Created     string
}

type dashboardData struct {
	viewdata.BaseVM
	JustCreated bool
	Trips       []tripRow

	TotalTrips     int
	DistinctPlaces int
	WithCompanions int
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	trips, err := h.Trips.ListByUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list trips", err, "Could not load your trips.", "/")
		return
	}

	data := dashboardData{
		BaseVM:      viewdata.NewBaseVM(r, "My trips", "/"),
		JustCreated: query.Get(r, "created") == "1",
		Trips:       make([]tripRow, 0, len(trips)),
		TotalTrips:  len(trips),
	}

	places := map[string]struct{}{}
	for _, t := range trips {
		places[t.Origin] = struct{}{}
		places[t.Destination] = struct{}{}
		if strings.TrimSpace(t.Companions) != "" {
			data.WithCompanions++
		}
		data.Trips = append(data.Trips, newTripRow(t))
	}
	data.DistinctPlaces = len(places)

	templates.Render(w, r, "dashboard", data)
}

func newTripRow(t models.Trip) tripRow {
	row := tripRow{
		Origin:      t.Origin,
		Destination: t.Destination,
		ModeLabel:   models.ModeLabel(t.Mode),
		TripNumber:  t.TripNumber,
		Companions:  t.Companions,
		Created:     t.CreatedAt.Local().Format("2 Jan 2006 15:04"),
	}
	if t.StartTime != nil {
		row.StartTime = t.StartTime.Local().Format("15:04")
	}
	if t.EndTime != nil {
		row.EndTime = t.EndTime.Local().Format("15:04")
	}
	return row
}
