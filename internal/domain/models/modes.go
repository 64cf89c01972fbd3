// internal/domain/models/modes.go
package models

// Canonical travel mode identifiers.
//
// These values are stored in the database in the Trip.Mode field and are
// used throughout the application as stable keys. The survey targets
// Indian urban transport, hence auto-rickshaw as a first-class mode.
const (
	ModeWalking      = "walking"
	ModeBicycle      = "bicycle"
	ModeMotorcycle   = "motorcycle"
	ModeCar          = "car"
	ModeBus          = "bus"
	ModeTrain        = "train"
	ModeMetro        = "metro"
	ModeAutoRickshaw = "auto-rickshaw"
	ModeTaxi         = "taxi"
	ModeOther        = "other"
)

// TravelMode pairs a stored value with its display label for the UI.
type TravelMode struct {
	Value string // The value stored in the database
	Label string // The display label in the UI
}

// TravelModes is the full set of allowed modes, in display order.
//
// This slice should be treated as the single source of truth for
// validation and for the trip form's mode dropdown.
var TravelModes = []TravelMode{
	{Value: ModeWalking, Label: "Walking"},
	{Value: ModeBicycle, Label: "Bicycle"},
	{Value: ModeMotorcycle, Label: "Motorcycle"},
	{Value: ModeCar, Label: "Car"},
	{Value: ModeBus, Label: "Bus"},
	{Value: ModeTrain, Label: "Train"},
	{Value: ModeMetro, Label: "Metro"},
	{Value: ModeAutoRickshaw, Label: "Auto-rickshaw"},
	{Value: ModeTaxi, Label: "Taxi"},
	{Value: ModeOther, Label: "Other"},
}

// IsValidMode checks if a value is a valid travel mode.
func IsValidMode(value string) bool {
	for _, m := range TravelModes {
		if m.Value == value {
			return true
		}
	}
	return false
}

// ModeLabel returns the display label for a stored mode value, or the
// value itself when it is not a known mode.
func ModeLabel(value string) string {
	for _, m := range TravelModes {
		if m.Value == value {
			return m.Label
		}
	}
	return value
}
