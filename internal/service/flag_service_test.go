package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagFixture() (*FlagService, *sessionFixture) {
	base := newSessionFixture()
	flags := newFakeFlagStore()
	svc := NewFlagService(flags, base.svc, testLogger())
	svc.now = func() time.Time { return sessionNow }
	return svc, base
}

func TestSetAndListFlags(t *testing.T) {
	svc, base := newFlagFixture()
	session := base.inProgress(7, 5*time.Minute)
	q1, q2 := uuid.New(), uuid.New()

	flag, err := svc.SetFlag(context.Background(), 7, session.ID, q1, true)
	require.NoError(t, err)
	assert.True(t, flag.Flagged)

	_, err = svc.SetFlag(context.Background(), 7, session.ID, q2, true)
	require.NoError(t, err)

	flags, err := svc.GetFlags(context.Background(), 7, session.ID)
	require.NoError(t, err)
	assert.Len(t, flags, 2)
}

func TestClearFlagOverwrites(t *testing.T) {
	svc, base := newFlagFixture()
	session := base.inProgress(7, 5*time.Minute)
	q := uuid.New()

	_, err := svc.SetFlag(context.Background(), 7, session.ID, q, true)
	require.NoError(t, err)
	_, err = svc.SetFlag(context.Background(), 7, session.ID, q, false)
	require.NoError(t, err)

	flags, err := svc.GetFlags(context.Background(), 7, session.ID)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.False(t, flags[0].Flagged)
}

func TestFlagsRequireOwnershipOnly(t *testing.T) {
	svc, base := newFlagFixture()

	// Flags survive expiry and completion; only ownership is enforced.
	expired := base.inProgress(7, 45*time.Minute)
	_, err := svc.SetFlag(context.Background(), 7, expired.ID, uuid.New(), true)
	require.NoError(t, err)

	_, err = svc.SetFlag(context.Background(), 99, expired.ID, uuid.New(), true)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.GetFlags(context.Background(), 99, expired.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
