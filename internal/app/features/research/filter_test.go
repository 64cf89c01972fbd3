package research

import (
	"testing"

	"github.com/natpac/tripcollect/internal/domain/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func trip(userID primitive.ObjectID, origin, destination, mode string) models.Trip {
	return models.Trip{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
	}
}

func TestFilter_SearchAndModeCombineWithAND(t *testing.T) {
	u1 := primitive.NewObjectID()
	u2 := primitive.NewObjectID()

	// 3 of these 10 match search "central" AND mode "bus".
	set := []models.Trip{
		trip(u1, "Central Station", "Airport", models.ModeBus),
		trip(u1, "Home", "Central Market", models.ModeBus),
		trip(u2, "CENTRAL Depot", "Office", models.ModeBus),
		trip(u2, "Central Station", "Beach", models.ModeTrain), // mode misses
		trip(u1, "Central Mall", "Home", models.ModeCar),       // mode misses
		trip(u1, "Home", "Office", models.ModeBus),             // search misses
		trip(u2, "Park", "Library", models.ModeBus),            // search misses
		trip(u2, "Home", "School", models.ModeWalking),
		trip(u1, "Office", "Gym", models.ModeMetro),
		trip(u1, "Airport", "Hotel", models.ModeTaxi),
	}

	f := Filter{Search: "central", Mode: models.ModeBus}
	got := f.Apply(set)

	require.Len(t, got, 3)

	stats := ComputeStats(got)
	require.Equal(t, 3, stats.TotalTrips)
	require.Equal(t, 2, stats.DistinctUsers)
	require.Equal(t, models.ModeBus, stats.TopMode)
}

func TestFilter_SearchIsCaseInsensitiveOnBothEndpoints(t *testing.T) {
	u := primitive.NewObjectID()
	set := []models.Trip{
		trip(u, "kowdiar", "Palayam", models.ModeWalking),
		trip(u, "Palayam", "KOWDIAR", models.ModeWalking),
		trip(u, "Pattom", "Palayam", models.ModeWalking),
	}

	got := Filter{Search: "Kowdiar"}.Apply(set)
	require.Len(t, got, 2)
}

func TestFilter_EmptyAndAllModeDisableThePredicate(t *testing.T) {
	u := primitive.NewObjectID()
	set := []models.Trip{
		trip(u, "A", "B", models.ModeBus),
		trip(u, "C", "D", models.ModeTrain),
	}

	require.Len(t, Filter{}.Apply(set), 2)
	require.Len(t, Filter{Mode: "all"}.Apply(set), 2)
	require.Len(t, Filter{Mode: models.ModeTrain}.Apply(set), 1)
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	u := primitive.NewObjectID()
	set := []models.Trip{
		trip(u, "First", "X", models.ModeBus),
		trip(u, "Second", "X", models.ModeBus),
		trip(u, "Third", "X", models.ModeBus),
	}

	got := Filter{Mode: models.ModeBus}.Apply(set)
	require.Equal(t, "First", got[0].Origin)
	require.Equal(t, "Second", got[1].Origin)
	require.Equal(t, "Third", got[2].Origin)
}

func TestComputeStats_EmptySet(t *testing.T) {
	s := ComputeStats(nil)
	require.Zero(t, s.TotalTrips)
	require.Zero(t, s.DistinctUsers)
	require.Empty(t, s.TopMode)
}

func TestComputeStats_TopModeTieBreaksToFirstSeen(t *testing.T) {
	u := primitive.NewObjectID()
	set := []models.Trip{
		trip(u, "A", "B", models.ModeTrain),
		trip(u, "C", "D", models.ModeBus),
		trip(u, "E", "F", models.ModeBus),
		trip(u, "G", "H", models.ModeTrain),
	}

	// Two trains, two buses; train appeared first.
	require.Equal(t, models.ModeTrain, ComputeStats(set).TopMode)
}
