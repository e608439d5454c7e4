package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestly/attest-backend/internal/model"
)

var accessNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func newAccessFixture() (*AccessService, *fakeAssessmentStore, *fakeGrantStore, *fakeSessionStore) {
	assessments := newFakeAssessmentStore()
	grants := newFakeGrantStore()
	sessions := newFakeSessionStore()
	svc := NewAccessService(assessments, grants, sessions, testLogger())
	svc.now = func() time.Time { return accessNow }
	return svc, assessments, grants, sessions
}

func openAssessment() *model.Assessment {
	return &model.Assessment{
		Title:           "Midterm",
		OwnerID:         1,
		Status:          model.AssessmentStatusPublished,
		StartTime:       accessNow.Add(-time.Hour),
		EndTime:         accessNow.Add(time.Hour),
		DurationMinutes: 30,
		AccessMode:      model.AccessModeOpen,
	}
}

func TestAccessOpenGranted(t *testing.T) {
	svc, assessments, _, _ := newAccessFixture()
	a := assessments.add(openAssessment())

	decision, err := svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{})
	require.NoError(t, err)
	assert.True(t, decision.Granted)
	assert.False(t, decision.Resume)
	assert.Equal(t, a.ID, decision.Assessment.ID)
}

func TestAccessUnknownAssessment(t *testing.T) {
	svc, _, _, _ := newAccessFixture()

	_, err := svc.Validate(context.Background(), 7, "p@example.com", uuid.New(), model.AccessRequest{})
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestAccessUnpublishedHidden(t *testing.T) {
	svc, assessments, _, _ := newAccessFixture()
	a := openAssessment()
	a.Status = model.AssessmentStatusDraft
	assessments.add(a)

	// Drafts are indistinguishable from nonexistent assessments.
	_, err := svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{})
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestAccessWindowBounds(t *testing.T) {
	svc, assessments, _, _ := newAccessFixture()

	early := openAssessment()
	early.StartTime = accessNow.Add(time.Minute)
	early.EndTime = accessNow.Add(2 * time.Hour)
	assessments.add(early)

	late := openAssessment()
	late.StartTime = accessNow.Add(-2 * time.Hour)
	late.EndTime = accessNow.Add(-time.Minute)
	assessments.add(late)

	_, err := svc.Validate(context.Background(), 7, "p@example.com", early.ID, model.AccessRequest{})
	assert.ErrorIs(t, err, ErrWindowNotStarted)

	_, err = svc.Validate(context.Background(), 7, "p@example.com", late.ID, model.AccessRequest{})
	assert.ErrorIs(t, err, ErrWindowEnded)
}

func TestAccessCodeMode(t *testing.T) {
	svc, assessments, _, _ := newAccessFixture()
	code := "SECRET42"
	a := openAssessment()
	a.AccessMode = model.AccessModeCode
	a.AccessCode = &code
	assessments.add(a)

	_, err := svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{AccessCode: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidAccessCode)

	_, err = svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{})
	assert.ErrorIs(t, err, ErrInvalidAccessCode)

	// Exact match only, no case folding for codes.
	_, err = svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{AccessCode: "secret42"})
	assert.ErrorIs(t, err, ErrInvalidAccessCode)

	decision, err := svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{AccessCode: code})
	require.NoError(t, err)
	assert.True(t, decision.Granted)
}

func TestAccessInvitationMode(t *testing.T) {
	svc, assessments, grants, _ := newAccessFixture()
	a := openAssessment()
	a.AccessMode = model.AccessModeInvitation
	assessments.add(a)

	grant := grants.add(&model.AccessGrant{
		Email:        "Invitee@Example.com",
		AssessmentID: &a.ID,
		Status:       model.GrantStatusAccepted,
		ExpiresAt:    accessNow.Add(time.Hour),
	})

	req := model.AccessRequest{InvitationToken: grant.Token.String()}

	// Email comparison is case-insensitive.
	decision, err := svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, req)
	require.NoError(t, err)
	assert.True(t, decision.Granted)

	_, err = svc.Validate(context.Background(), 7, "other@example.com", a.ID, req)
	assert.ErrorIs(t, err, ErrInvalidInvitation)

	_, err = svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{InvitationToken: "not-a-uuid"})
	assert.ErrorIs(t, err, ErrInvalidInvitation)

	_, err = svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{InvitationToken: uuid.NewString()})
	assert.ErrorIs(t, err, ErrInvalidInvitation)

	_, err = svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{})
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestAccessInvitationBoundToOtherAssessment(t *testing.T) {
	svc, assessments, grants, _ := newAccessFixture()
	a := openAssessment()
	a.AccessMode = model.AccessModeInvitation
	assessments.add(a)

	otherID := uuid.New()
	grant := grants.add(&model.AccessGrant{
		Email:        "invitee@example.com",
		AssessmentID: &otherID,
		Status:       model.GrantStatusAccepted,
		ExpiresAt:    accessNow.Add(time.Hour),
	})

	_, err := svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{InvitationToken: grant.Token.String()})
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestAccessInvitationUnboundGrantAdmitsAnywhere(t *testing.T) {
	svc, assessments, grants, _ := newAccessFixture()
	a := openAssessment()
	a.AccessMode = model.AccessModeInvitation
	assessments.add(a)

	grant := grants.add(&model.AccessGrant{
		Email:     "invitee@example.com",
		Status:    model.GrantStatusAccepted,
		ExpiresAt: accessNow.Add(time.Hour),
	})

	decision, err := svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{InvitationToken: grant.Token.String()})
	require.NoError(t, err)
	assert.True(t, decision.Granted)
}

func TestAccessInvitationLazyExpiry(t *testing.T) {
	svc, assessments, grants, _ := newAccessFixture()
	a := openAssessment()
	a.AccessMode = model.AccessModeInvitation
	assessments.add(a)

	grant := grants.add(&model.AccessGrant{
		Email:        "invitee@example.com",
		AssessmentID: &a.ID,
		Status:       model.GrantStatusAccepted,
		ExpiresAt:    accessNow.Add(-time.Minute),
	})

	_, err := svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{InvitationToken: grant.Token.String()})
	assert.ErrorIs(t, err, ErrInvitationExpired)

	stored, getErr := grants.GetByToken(context.Background(), grant.Token)
	require.NoError(t, getErr)
	assert.Equal(t, model.GrantStatusExpired, stored.Status)
	assert.Equal(t, 1, grants.expiredCalls)

	// Second attempt denies again without rewriting the grant.
	_, err = svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{InvitationToken: grant.Token.String()})
	assert.ErrorIs(t, err, ErrInvitationExpired)
	assert.Equal(t, 1, grants.expiredCalls)
}

func TestAccessInvitationPendingDenied(t *testing.T) {
	svc, assessments, grants, _ := newAccessFixture()
	a := openAssessment()
	a.AccessMode = model.AccessModeInvitation
	assessments.add(a)

	grant := grants.add(&model.AccessGrant{
		Email:        "invitee@example.com",
		AssessmentID: &a.ID,
		Status:       model.GrantStatusPending,
		ExpiresAt:    accessNow.Add(time.Hour),
	})

	_, err := svc.Validate(context.Background(), 7, "invitee@example.com", a.ID, model.AccessRequest{InvitationToken: grant.Token.String()})
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestAccessResumeSkipsWindowAndCredentialChecks(t *testing.T) {
	svc, assessments, _, sessions := newAccessFixture()
	code := "SECRET42"
	a := openAssessment()
	a.AccessMode = model.AccessModeCode
	a.AccessCode = &code
	a.EndTime = accessNow.Add(-time.Minute) // window already closed
	assessments.add(a)

	startedAt := accessNow.Add(-10 * time.Minute)
	existing := sessions.add(&model.Session{
		AssessmentID:  a.ID,
		ParticipantID: 7,
		Status:        model.SessionStatusInProgress,
		StartedAt:     &startedAt,
	})

	// Mid-attempt participants are never re-challenged, even without the code.
	decision, err := svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{})
	require.NoError(t, err)
	assert.True(t, decision.Granted)
	assert.True(t, decision.Resume)
	require.NotNil(t, decision.Session)
	assert.Equal(t, existing.ID, decision.Session.ID)
}

func TestAccessTerminalSessionDoesNotShortCircuit(t *testing.T) {
	svc, assessments, _, sessions := newAccessFixture()
	a := openAssessment()
	a.EndTime = accessNow.Add(-time.Minute)
	assessments.add(a)

	sessions.add(&model.Session{
		AssessmentID:  a.ID,
		ParticipantID: 7,
		Status:        model.SessionStatusCompleted,
	})

	_, err := svc.Validate(context.Background(), 7, "p@example.com", a.ID, model.AccessRequest{})
	assert.ErrorIs(t, err, ErrWindowEnded)
}
