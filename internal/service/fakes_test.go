package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/model"
)

// In-memory stores mirroring the pgx repositories' contracts, including the
// pgx.ErrNoRows not-found convention and the conditional-update semantics of
// the terminal session transitions.

func testLogger() zerolog.Logger { return zerolog.Nop() }

type fakeAssessmentStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Assessment
}

func newFakeAssessmentStore() *fakeAssessmentStore {
	return &fakeAssessmentStore{items: make(map[uuid.UUID]*model.Assessment)}
}

func (f *fakeAssessmentStore) add(a *model.Assessment) *model.Assessment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.items[a.ID] = a
	return a
}

func (f *fakeAssessmentStore) GetByID(_ context.Context, id uuid.UUID) (*model.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

type fakeGrantStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.AccessGrant

	expiredCalls int
}

func newFakeGrantStore() *fakeGrantStore {
	return &fakeGrantStore{items: make(map[uuid.UUID]*model.AccessGrant)}
}

func (f *fakeGrantStore) add(g *model.AccessGrant) *model.AccessGrant {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.Token == uuid.Nil {
		g.Token = uuid.New()
	}
	f.items[g.Token] = g
	return g
}

func (f *fakeGrantStore) GetByToken(_ context.Context, token uuid.UUID) (*model.AccessGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.items[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGrantStore) MarkExpired(_ context.Context, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.items[token]
	if !ok {
		return pgx.ErrNoRows
	}
	if g.Status == model.GrantStatusPending || g.Status == model.GrantStatusAccepted {
		g.Status = model.GrantStatusExpired
	}
	f.expiredCalls++
	return nil
}

type fakeSessionStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Session

	// hideUntilCreate simulates a concurrent join: the pair lookup misses
	// until Create reports the conflict.
	hideUntilCreate bool
	expired         []model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{items: make(map[uuid.UUID]*model.Session)}
}

func (f *fakeSessionStore) add(s *model.Session) *model.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.items[s.ID] = s
	return s
}

func (f *fakeSessionStore) get(id uuid.UUID) *model.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) GetByAssessmentAndParticipant(_ context.Context, assessmentID uuid.UUID, participantID int) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideUntilCreate {
		return nil, pgx.ErrNoRows
	}
	for _, s := range f.items {
		if s.AssessmentID == assessmentID && s.ParticipantID == participantID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideUntilCreate {
		f.hideUntilCreate = false
		return pgx.ErrNoRows
	}
	for _, existing := range f.items {
		if existing.AssessmentID == s.AssessmentID && existing.ParticipantID == s.ParticipantID {
			return pgx.ErrNoRows
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) MarkStarted(_ context.Context, id uuid.UUID, startedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok || s.Status != model.SessionStatusNotStarted {
		return false, nil
	}
	s.Status = model.SessionStatusInProgress
	s.StartedAt = &startedAt
	return true, nil
}

func (f *fakeSessionStore) MarkCompleted(_ context.Context, id uuid.UUID, finishedAt time.Time, totalScore float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok || s.Status != model.SessionStatusInProgress {
		return false, nil
	}
	s.Status = model.SessionStatusCompleted
	s.FinishedAt = &finishedAt
	s.TotalScore = &totalScore
	return true, nil
}

func (f *fakeSessionStore) MarkTerminated(_ context.Context, id uuid.UUID, finishedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok || s.Status != model.SessionStatusInProgress {
		return false, nil
	}
	s.Status = model.SessionStatusTerminated
	s.FinishedAt = &finishedAt
	return true, nil
}

func (f *fakeSessionStore) IncrementViolations(_ context.Context, id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	s.ViolationsCount++
	return s.ViolationsCount, nil
}

func (f *fakeSessionStore) UpdateTotalScore(_ context.Context, id uuid.UUID, total float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.TotalScore = &total
	return nil
}

func (f *fakeSessionStore) ListInProgressByAssessment(_ context.Context, assessmentID uuid.UUID) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Session
	for _, s := range f.items {
		if s.AssessmentID == assessmentID && s.Status == model.SessionStatusInProgress {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ListExpired(_ context.Context, _ time.Time) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expired, nil
}

type fakeQuestionStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{items: make(map[uuid.UUID]*model.Question)}
}

func (f *fakeQuestionStore) add(q *model.Question) *model.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	f.items[q.ID] = q
	return q
}

func (f *fakeQuestionStore) GetTemplate(_ context.Context, assessmentID, questionID uuid.UUID) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.items[questionID]
	if !ok || q.AssessmentID != assessmentID {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionStore) ListTemplates(_ context.Context, assessmentID uuid.UUID) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Question
	for _, q := range f.items {
		if q.AssessmentID == assessmentID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNum < out[j].OrderNum })
	return out, nil
}

type answerKey struct {
	sessionID  uuid.UUID
	questionID uuid.UUID
}

type fakeAnswerStore struct {
	mu    sync.Mutex
	items map[answerKey]*model.AnswerRecord
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{items: make(map[answerKey]*model.AnswerRecord)}
}

func (f *fakeAnswerStore) Get(_ context.Context, sessionID, questionID uuid.UUID) (*model.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[answerKey{sessionID, questionID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeAnswerStore) CreateSnapshot(_ context.Context, rec *model.AnswerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := answerKey{rec.SessionID, rec.QuestionID}
	if _, exists := f.items[key]; exists {
		return pgx.ErrNoRows
	}
	rec.ID = uuid.New()
	cp := *rec
	f.items[key] = &cp
	return nil
}

func (f *fakeAnswerStore) SaveResponse(_ context.Context, sessionID, questionID uuid.UUID, response json.RawMessage, marksObtained *float64, graded bool) (*model.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[answerKey{sessionID, questionID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	r.Response = response
	r.MarksObtained = marksObtained
	r.Graded = graded
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (f *fakeAnswerStore) SetReview(_ context.Context, sessionID, questionID uuid.UUID, marksObtained float64, comment *string) (*model.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[answerKey{sessionID, questionID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	r.MarksObtained = &marksObtained
	r.Graded = true
	r.GraderComment = comment
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (f *fakeAnswerStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AnswerRecord
	for key, r := range f.items {
		if key.sessionID == sessionID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAnswerStore) SumObtained(_ context.Context, sessionID uuid.UUID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for key, r := range f.items {
		if key.sessionID == sessionID && r.Graded && r.MarksObtained != nil {
			total += *r.MarksObtained
		}
	}
	return total, nil
}

type fakeFlagStore struct {
	mu    sync.Mutex
	items map[answerKey]model.Flag
}

func newFakeFlagStore() *fakeFlagStore {
	return &fakeFlagStore{items: make(map[answerKey]model.Flag)}
}

func (f *fakeFlagStore) Set(_ context.Context, flag *model.Flag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[answerKey{flag.SessionID, flag.QuestionID}] = *flag
	return nil
}

func (f *fakeFlagStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.Flag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Flag
	for key, flag := range f.items {
		if key.sessionID == sessionID {
			out = append(out, flag)
		}
	}
	return out, nil
}

type fakeResultSink struct {
	mu      sync.Mutex
	results []model.SessionResult
	failErr error
}

func (f *fakeResultSink) Enqueue(_ context.Context, res *model.SessionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.results = append(f.results, *res)
	return nil
}
