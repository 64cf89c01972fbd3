package oauthstate_test

import (
	"testing"
	"time"

	"github.com/natpac/tripcollect/internal/app/store/oauthstate"
	"github.com/natpac/tripcollect/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestValidate_ConsumesTheToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Save(ctx, "state-abc", "/research", time.Now().Add(10*time.Minute))
	require.NoError(t, err)

	ret, valid, err := store.Validate(ctx, "state-abc")
	require.NoError(t, err)
	require.True(t, valid)
	require.Equal(t, "/research", ret)

	// One-time use: the same token fails on replay.
	_, valid, err = store.Validate(ctx, "state-abc")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestValidate_ExpiredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Save(ctx, "state-old", "", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, valid, err := store.Validate(ctx, "state-old")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestValidate_UnknownToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, valid, err := store.Validate(ctx, "never-saved")
	require.NoError(t, err)
	require.False(t, valid)
}
