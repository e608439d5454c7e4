package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestly/attest-backend/internal/clock"
	"github.com/attestly/attest-backend/internal/model"
)

type timerFixture struct {
	*sessionFixture
	timer *TimerService
}

func newTimerFixture() *timerFixture {
	base := newSessionFixture()
	timer := NewTimerService(base.sessions, base.assessments, base.svc, testLogger())
	timer.now = func() time.Time { return sessionNow }
	return &timerFixture{sessionFixture: base, timer: timer}
}

func TestTimerNotStartedHasFullBudget(t *testing.T) {
	f := newTimerFixture()
	session := f.sessions.add(&model.Session{
		AssessmentID:  f.assessment.ID,
		ParticipantID: 7,
		Status:        model.SessionStatusNotStarted,
	})

	info, err := f.timer.Info(context.Background(), 7, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusNotStarted, info.Status)
	assert.Equal(t, int64(30*60), info.RemainingSeconds)
	assert.False(t, info.IsExpired)
	assert.Equal(t, clock.WarnNone, info.Warn)
}

func TestTimerInProgressCountdown(t *testing.T) {
	f := newTimerFixture()
	session := f.inProgress(7, 10*time.Minute)

	info, err := f.timer.Info(context.Background(), 7, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, info.Status)
	assert.Equal(t, int64(20*60), info.RemainingSeconds)
	assert.False(t, info.IsExpired)
	assert.Equal(t, clock.WarnNone, info.Warn)
}

func TestTimerWarnEscalation(t *testing.T) {
	f := newTimerFixture()

	cases := []struct {
		name    string
		elapsed time.Duration
		warn    clock.WarnLevel
	}{
		{"ten minutes left", 20 * time.Minute, clock.WarnInfo},
		{"five minutes left", 25 * time.Minute, clock.WarnWarning},
		{"one minute left", 29 * time.Minute, clock.WarnCritical},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := f.inProgress(100+i, tc.elapsed)
			info, err := f.timer.Info(context.Background(), 100+i, session.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.warn, info.Warn)
			assert.False(t, info.IsExpired)
		})
	}
}

func TestTimerExpiryForcesCompletion(t *testing.T) {
	f := newTimerFixture()
	session := f.inProgress(7, 40*time.Minute) // 30-minute budget

	info, err := f.timer.Info(context.Background(), 7, session.ID)
	require.NoError(t, err)
	assert.True(t, info.IsExpired)
	assert.Equal(t, int64(0), info.RemainingSeconds)
	assert.Equal(t, model.SessionStatusCompleted, info.Status)
	assert.Equal(t, model.SessionStatusCompleted, f.sessions.get(session.ID).Status)
}

func TestTimerTerminalSessionReadsAsExpired(t *testing.T) {
	f := newTimerFixture()
	session := f.sessions.add(&model.Session{
		AssessmentID:  f.assessment.ID,
		ParticipantID: 7,
		Status:        model.SessionStatusTerminated,
	})

	info, err := f.timer.Info(context.Background(), 7, session.ID)
	require.NoError(t, err)
	assert.True(t, info.IsExpired)
	assert.Equal(t, int64(0), info.RemainingSeconds)
	assert.Equal(t, model.SessionStatusTerminated, info.Status)
}

func TestTimerHidesForeignSessions(t *testing.T) {
	f := newTimerFixture()
	session := f.inProgress(7, 10*time.Minute)

	_, err := f.timer.Info(context.Background(), 99, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweepCompletesOnlyExpiredSessions(t *testing.T) {
	f := newTimerFixture()
	expired1 := f.inProgress(1, 35*time.Minute)
	expired2 := f.inProgress(2, 31*time.Minute)
	live := f.inProgress(3, 5*time.Minute)

	swept, err := f.timer.Sweep(context.Background(), f.assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, swept)
	assert.Equal(t, model.SessionStatusCompleted, f.sessions.get(expired1.ID).Status)
	assert.Equal(t, model.SessionStatusCompleted, f.sessions.get(expired2.ID).Status)
	assert.Equal(t, model.SessionStatusInProgress, f.sessions.get(live.ID).Status)
}

func TestSweepUnknownAssessment(t *testing.T) {
	f := newTimerFixture()

	_, err := f.timer.Sweep(context.Background(), f.inProgress(1, time.Minute).AssessmentID)
	require.NoError(t, err)

	_, err = f.timer.Sweep(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestSweepAllUsesStoreSelection(t *testing.T) {
	f := newTimerFixture()
	expired := f.inProgress(1, 45*time.Minute)
	f.sessions.expired = []model.Session{*f.sessions.get(expired.ID)}

	swept, err := f.timer.SweepAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	assert.Equal(t, model.SessionStatusCompleted, f.sessions.get(expired.ID).Status)
}
