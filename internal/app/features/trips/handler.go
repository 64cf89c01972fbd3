// internal/app/features/trips/handler.go
package trips

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	tripstore "github.com/natpac/tripcollect/internal/app/store/trips"
	"github.com/natpac/tripcollect/internal/app/system/authz"
	"github.com/natpac/tripcollect/internal/app/system/htmlsanitize"
	"github.com/natpac/tripcollect/internal/app/system/timeouts"
	"github.com/natpac/tripcollect/internal/app/system/viewdata"
	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TripInserter is the slice of the trip store the submission flow needs.
type TripInserter interface {
	Insert(ctx context.Context, t models.Trip) (models.Trip, error)
}

type Handler struct {
	Trips  TripInserter
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

// tripForm carries the raw form values so a rejected submission renders
// back exactly what the user typed.
type tripForm struct {
	TripNumber  string
	Origin      string
	Destination string
	Mode        string
	StartTime   string
	EndTime     string
	Companions  string
}

type tripFormData struct {
	viewdata.BaseVM
	Error string
	Form  tripForm
	Modes []models.TravelMode
}

// timeLocalLayout matches the value format of <input type="datetime-local">.
const timeLocalLayout = "2006-01-02T15:04"

/*─────────────────────────────────────────────────────────────────────────────*
| GET /trips/new                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNewTrip(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "trip_form", tripFormData{
		BaseVM: viewdata.NewBaseVM(r, "Record a trip", "/dashboard"),
		Form: tripForm{
			// Client-side script fills origin from geolocation when it can;
			// the start time gets a server-side default as well.
			StartTime: time.Now().Local().Format(timeLocalLayout),
		},
		Modes: models.TravelModes,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /trips                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreateTrip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/trips/new")
		return
	}

	form := tripForm{
		TripNumber:  htmlsanitize.StripTags(r.FormValue("trip_number")),
		Origin:      htmlsanitize.StripTags(r.FormValue("origin")),
		Destination: htmlsanitize.StripTags(r.FormValue("destination")),
		Mode:        r.FormValue("mode"),
		StartTime:   r.FormValue("start_time"),
		EndTime:     r.FormValue("end_time"),
		Companions:  htmlsanitize.StripTags(r.FormValue("companions")),
	}

	if form.Origin == "" || form.Destination == "" || form.Mode == "" {
		h.renderFormWithError(w, r, "Origin, destination, and mode are required.", form)
		return
	}
	if !models.IsValidMode(form.Mode) {
		h.renderFormWithError(w, r, "Please choose a travel mode from the list.", form)
		return
	}

	_, userID, ok := authz.UserCtx(r)
	if !ok {
		h.renderFormWithError(w, r, "Your session has expired. Please log in again.", form)
		return
	}

	trip := models.Trip{
		UserID:      userID,
		TripNumber:  form.TripNumber,
		Origin:      form.Origin,
		Destination: form.Destination,
		Mode:        form.Mode,
		Companions:  form.Companions,
	}
	if ts, err := time.ParseInLocation(timeLocalLayout, form.StartTime, time.Local); err == nil {
		utc := ts.UTC()
		trip.StartTime = &utc
	}
	if ts, err := time.ParseInLocation(timeLocalLayout, form.EndTime, time.Local); err == nil {
		utc := ts.UTC()
		trip.EndTime = &utc
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Trips.Insert(ctx, trip); err != nil {
		h.Log.Error("trip insert failed",
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
		// The store's message goes back verbatim so the user sees what the
		// backend actually objected to.
		h.renderFormWithError(w, r, err.Error(), form)
		return
	}

	http.Redirect(w, r, "/dashboard?created=1", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg string, form tripForm) {
	templates.Render(w, r, "trip_form", tripFormData{
		BaseVM: viewdata.NewBaseVM(r, "Record a trip", "/dashboard"),
		Error:  msg,
		Form:   form,
		Modes:  models.TravelModes,
	})
}
