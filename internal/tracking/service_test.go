package tracking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applicant-tracker/internal/events"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu        sync.Mutex
	apps      map[uuid.UUID]types.Application
	saveCount int
}

func newMemStore() *memStore {
	return &memStore{apps: make(map[uuid.UUID]types.Application)}
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, nil
	}
	return &app, nil
}

func (m *memStore) FindByJobAndCandidate(_ context.Context, jobID, candidateID uuid.UUID) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.JobID == jobID && app.CandidateID != nil && *app.CandidateID == candidateID {
			return &app, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByJobAndEmail(_ context.Context, jobID uuid.UUID, email string) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.JobID == jobID && strings.EqualFold(app.ExternalEmail, email) {
			return &app, nil
		}
	}
	return nil, nil
}

func (m *memStore) Save(_ context.Context, app types.Application) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.ID] = app
	m.saveCount++
	return &app, nil
}

func (m *memStore) FindMany(_ context.Context, filter types.ApplicationFilter, page, limit int) ([]types.Application, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []types.Application
	for _, app := range m.apps {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.JobID != nil && app.JobID != *filter.JobID {
			continue
		}
		matched = append(matched, app)
	}
	return matched, len(matched), nil
}

type stubJobs struct {
	jobs map[uuid.UUID]types.Job
}

func (s *stubJobs) FindJobByID(_ context.Context, id uuid.UUID) (*types.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

type stubResumes struct {
	resumes map[uuid.UUID]types.Resume
	err     error
}

func (s *stubResumes) FindResumeByID(_ context.Context, id uuid.UUID) (*types.Resume, error) {
	if s.err != nil {
		return nil, s.err
	}
	resume, ok := s.resumes[id]
	if !ok {
		return nil, nil
	}
	return &resume, nil
}

type captureSink struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (s *captureSink) Publish(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type serviceFixture struct {
	service *Service
	store   *memStore
	jobs    *stubJobs
	resumes *stubResumes
	sink    *captureSink

	jobID    uuid.UUID
	resumeID uuid.UUID
}

func newServiceFixture(t *testing.T, opts ...ServiceOption) *serviceFixture {
	t.Helper()

	jobID := uuid.New()
	resumeID := uuid.New()
	atsScore := 90

	f := &serviceFixture{
		store: newMemStore(),
		jobs: &stubJobs{jobs: map[uuid.UUID]types.Job{
			jobID: {
				ID:              jobID,
				Title:           "Backend Engineer",
				Status:          types.JobStatusOpen,
				SkillsRequired:  []string{"Go", "PostgreSQL", "Kubernetes"},
				ExperienceLevel: types.LevelMid,
			},
		}},
		resumes: &stubResumes{resumes: map[uuid.UUID]types.Resume{
			resumeID: {
				ID:     resumeID,
				Skills: []types.ResumeSkill{{Name: "Go"}, {Name: "Postgres"}, {Name: "Terraform"}},
				Experience: []types.WorkExperience{
					{StartDate: time.Now().AddDate(-5, 0, 0), Current: true},
				},
				EstimatedATSScore: &atsScore,
			},
		}},
		sink:     &captureSink{},
		jobID:    jobID,
		resumeID: resumeID,
	}

	allOpts := append([]ServiceOption{WithEventSink(f.sink)}, opts...)
	f.service = NewService(f.store, f.jobs, f.resumes, allOpts...)
	return f
}

func (f *serviceFixture) createApplication(t *testing.T, withResume bool) *types.Application {
	t.Helper()
	candidateID := uuid.New()
	req := &types.CreateApplicationRequest{
		JobID:       f.jobID,
		CandidateID: &candidateID,
	}
	if withResume {
		req.ResumeID = &f.resumeID
	}
	app, err := f.service.Create(context.Background(), req, Actor{ID: candidateID, Name: "Candidate"})
	require.NoError(t, err)
	return app
}

func TestServiceCreate_WithResumeScreensSynchronously(t *testing.T) {
	f := newServiceFixture(t)

	app := f.createApplication(t, true)

	assert.Equal(t, types.StatusApplied, app.Status)
	assert.Equal(t, types.StageScreening, app.Stage)
	require.NotNil(t, app.Screening.AutoScreeningScore)
	assert.GreaterOrEqual(t, *app.Screening.AutoScreeningScore, 0)
	assert.LessOrEqual(t, *app.Screening.AutoScreeningScore, 100)

	require.NotNil(t, app.Screening.SkillsMatch)
	assert.Contains(t, app.Screening.SkillsMatch.Matched, "go")
	require.NotNil(t, app.Screening.ExperienceMatch)
	assert.Equal(t, 100.0, app.Screening.ExperienceMatch.Score)

	// The first persisted write already carries the screening data.
	assert.Equal(t, 1, f.store.saveCount)
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, events.TypeApplicationCreated, f.sink.events[0].Type)
}

func TestServiceCreate_WithoutResumeLeavesScoreUnset(t *testing.T) {
	f := newServiceFixture(t)

	app := f.createApplication(t, false)

	assert.Nil(t, app.Screening.AutoScreeningScore)
	assert.Nil(t, app.Screening.SkillsMatch)
}

func TestServiceCreate_Duplicate(t *testing.T) {
	f := newServiceFixture(t)
	candidateID := uuid.New()
	req := &types.CreateApplicationRequest{JobID: f.jobID, CandidateID: &candidateID}

	_, err := f.service.Create(context.Background(), req, Actor{ID: candidateID})
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), req, Actor{ID: candidateID})
	var duplicate *ErrDuplicateApplication
	require.ErrorAs(t, err, &duplicate)
}

func TestServiceCreate_ExternalEmailDuplicate(t *testing.T) {
	f := newServiceFixture(t)
	req := &types.CreateApplicationRequest{JobID: f.jobID, ExternalEmail: "jane@example.com", ExternalName: "Jane"}

	app, err := f.service.Create(context.Background(), req, Actor{})
	require.NoError(t, err)
	assert.True(t, app.IsExternal())

	// Same email, different casing and stray whitespace, still a duplicate.
	req2 := &types.CreateApplicationRequest{JobID: f.jobID, ExternalEmail: " Jane@Example.com "}
	_, err = f.service.Create(context.Background(), req2, Actor{})
	var duplicate *ErrDuplicateApplication
	require.ErrorAs(t, err, &duplicate)
}

func TestServiceCreate_JobNotFound(t *testing.T) {
	f := newServiceFixture(t)
	candidateID := uuid.New()
	req := &types.CreateApplicationRequest{JobID: uuid.New(), CandidateID: &candidateID}

	_, err := f.service.Create(context.Background(), req, Actor{})
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "job", notFound.Kind)
}

func TestServiceCreate_JobClosed(t *testing.T) {
	f := newServiceFixture(t)
	job := f.jobs.jobs[f.jobID]
	job.Status = types.JobStatusClosed
	f.jobs.jobs[f.jobID] = job

	candidateID := uuid.New()
	req := &types.CreateApplicationRequest{JobID: f.jobID, CandidateID: &candidateID}

	_, err := f.service.Create(context.Background(), req, Actor{})
	var notAccepting *ErrJobNotAcceptingApplications
	require.ErrorAs(t, err, &notAccepting)
}

func TestServiceCreate_IdentityInvariant(t *testing.T) {
	f := newServiceFixture(t)
	candidateID := uuid.New()

	// Neither identification mode.
	_, err := f.service.Create(context.Background(), &types.CreateApplicationRequest{JobID: f.jobID}, Actor{})
	var invalid *ErrInvalidApplication
	require.ErrorAs(t, err, &invalid)

	// Both identification modes.
	_, err = f.service.Create(context.Background(), &types.CreateApplicationRequest{
		JobID:         f.jobID,
		CandidateID:   &candidateID,
		ExternalEmail: "jane@example.com",
	}, Actor{})
	require.ErrorAs(t, err, &invalid)
}

func TestServiceUpdate_ExplicitStageWinsOverDerived(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)

	status := types.StatusScreening
	stage := types.StageTechnical

	// status applied->screening derives stage phone_screen; the explicit
	// stage then advances phone_screen->technical and wins.
	updated, err := f.service.Update(context.Background(), app.ID,
		&types.UpdateApplicationRequest{Status: &status, Stage: &stage}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, types.StatusScreening, updated.Status)
	assert.Equal(t, types.StageTechnical, updated.Stage)
}

func TestServiceUpdate_InvalidTransitionNotPersisted(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)
	savesBefore := f.store.saveCount

	status := types.StatusHired
	_, err := f.service.Update(context.Background(), app.ID,
		&types.UpdateApplicationRequest{Status: &status}, Actor{ID: uuid.New()})

	var invalidTransition *ErrInvalidTransition
	require.ErrorAs(t, err, &invalidTransition)
	assert.Equal(t, savesBefore, f.store.saveCount, "failed update must not write")

	stored, err := f.service.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, stored.Status)
	assert.Len(t, stored.Timeline, len(app.Timeline), "no partial timeline append")
}

func TestServiceUpdate_CombinedPatchAppliesInOrder(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)

	status := types.StatusScreening
	rating := 4
	reviewer := uuid.New()
	updated, err := f.service.Update(context.Background(), app.ID, &types.UpdateApplicationRequest{
		Status:     &status,
		Rating:     &rating,
		AssignedTo: &reviewer,
	}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, types.StatusScreening, updated.Status)
	assert.Equal(t, types.StagePhoneScreen, updated.Stage)
	assert.Equal(t, 4, updated.Rating)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, reviewer, *updated.AssignedTo)

	// created + status_changed + rated + assigned
	assert.Len(t, updated.Timeline, 4)
	// One persisted write for the whole logical operation.
	assert.Equal(t, 2, f.store.saveCount)
}

func TestServiceUpdate_EmptyPatchIsNoOp(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)
	savesBefore := f.store.saveCount

	updated, err := f.service.Update(context.Background(), app.ID, &types.UpdateApplicationRequest{}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, app.ID, updated.ID)
	assert.Equal(t, savesBefore, f.store.saveCount)
}

func TestServiceBulkUpdate_PartiallyTolerant(t *testing.T) {
	f := newServiceFixture(t)

	first := f.createApplication(t, false)
	second := f.createApplication(t, false)
	third := f.createApplication(t, false)

	// Move the third along so the bulk transition is illegal for it.
	status := types.StatusScreening
	_, err := f.service.Update(context.Background(), third.ID,
		&types.UpdateApplicationRequest{Status: &status}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	result, err := f.service.BulkUpdate(context.Background(),
		[]uuid.UUID{first.ID, second.ID, third.ID},
		&types.UpdateApplicationRequest{Status: &status}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 2, result.UpdatedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], third.ID.String())
}

func TestServiceBulkUpdate_MissingRecordCollected(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)

	status := types.StatusScreening
	result, err := f.service.BulkUpdate(context.Background(),
		[]uuid.UUID{app.ID, uuid.New()},
		&types.UpdateApplicationRequest{Status: &status}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UpdatedCount)
	assert.Len(t, result.Errors, 1)
}

func TestServiceRate(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)

	rated, err := f.service.Rate(context.Background(), app.ID,
		&types.RateRequest{Rating: 4, Notes: "strong take-home"}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 4, rated.Rating)
	last := rated.Timeline[len(rated.Timeline)-1]
	assert.Equal(t, types.ActionRated, last.Action)
}

func TestServiceRate_OutOfRangeNotPersisted(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)
	savesBefore := f.store.saveCount

	_, err := f.service.Rate(context.Background(), app.ID,
		&types.RateRequest{Rating: 6}, Actor{ID: uuid.New()})

	var invalidRating *ErrInvalidRating
	require.ErrorAs(t, err, &invalidRating)
	assert.Equal(t, savesBefore, f.store.saveCount)
}

func TestServiceAssign(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)
	reviewer := uuid.New()

	assigned, err := f.service.Assign(context.Background(), app.ID,
		&types.AssignRequest{AssignedTo: reviewer}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, reviewer, *assigned.AssignedTo)
	last := assigned.Timeline[len(assigned.Timeline)-1]
	assert.Equal(t, types.ActionAssigned, last.Action)
}

func TestServiceRate_NotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Rate(context.Background(), uuid.New(),
		&types.RateRequest{Rating: 3}, Actor{ID: uuid.New()})
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestServiceWithdraw_CandidateOnly(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)

	_, err := f.service.Withdraw(context.Background(), app.ID,
		&types.WithdrawRequest{Reason: "changed my mind"}, Actor{ID: uuid.New()})
	var forbidden *ErrForbidden
	require.ErrorAs(t, err, &forbidden)

	withdrawn, err := f.service.Withdraw(context.Background(), app.ID,
		&types.WithdrawRequest{Reason: "changed my mind"}, Actor{ID: *app.CandidateID})
	require.NoError(t, err)
	assert.Equal(t, types.StatusWithdrawn, withdrawn.Status)
}

func TestServiceReject_RepeatAppendsEntry(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)
	actor := Actor{ID: uuid.New(), Name: "Recruiter"}

	first, err := f.service.Reject(context.Background(), app.ID,
		&types.RejectRequest{Reason: "position filled"}, actor)
	require.NoError(t, err)
	assert.Equal(t, types.StatusRejected, first.Status)
	entries := len(first.Timeline)

	second, err := f.service.Reject(context.Background(), app.ID,
		&types.RejectRequest{Reason: "position filled"}, actor)
	require.NoError(t, err)
	assert.Equal(t, types.StatusRejected, second.Status)
	assert.Len(t, second.Timeline, entries+1)
}

func TestServiceAttachResume_ThenScoreInRange(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)
	require.Nil(t, app.Screening.AutoScreeningScore)

	updated, err := f.service.AttachResume(context.Background(), app.ID, f.resumeID, Actor{ID: uuid.New()})
	require.NoError(t, err)

	require.NotNil(t, updated.Screening.AutoScreeningScore)
	assert.GreaterOrEqual(t, *updated.Screening.AutoScreeningScore, 0)
	assert.LessOrEqual(t, *updated.Screening.AutoScreeningScore, 100)
}

func TestServiceRecomputeScreening_DegradesOnResumeFailure(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, true)

	f.resumes.err = fmt.Errorf("resume service unavailable")

	updated, err := f.service.RecomputeScreening(context.Background(), app.ID, Actor{ID: uuid.New()})
	require.NoError(t, err, "lookup failure degrades to partial scoring, not an error")
	require.NotNil(t, updated.Screening.AutoScreeningScore)
}

func TestServiceEventSinkFailureDoesNotFailOperation(t *testing.T) {
	f := newServiceFixture(t)
	f.sink.err = fmt.Errorf("broker down")

	candidateID := uuid.New()
	app, err := f.service.Create(context.Background(),
		&types.CreateApplicationRequest{JobID: f.jobID, CandidateID: &candidateID},
		Actor{ID: candidateID})
	require.NoError(t, err)
	assert.NotNil(t, app)
}

func TestServiceScheduleInterview_EmitsEvent(t *testing.T) {
	f := newServiceFixture(t)
	app := f.createApplication(t, false)

	status := types.StatusScreening
	_, err := f.service.Update(context.Background(), app.ID,
		&types.UpdateApplicationRequest{Status: &status}, Actor{ID: uuid.New()})
	require.NoError(t, err)

	updated, err := f.service.ScheduleInterview(context.Background(), app.ID,
		&types.ScheduleInterviewRequest{Type: "technical", ScheduledAt: time.Now().Add(48 * time.Hour)},
		Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, types.StatusInterviewing, updated.Status)
	require.Len(t, updated.Interviews.ScheduledInterviews, 1)

	last := f.sink.events[len(f.sink.events)-1]
	assert.Equal(t, events.TypeInterviewScheduled, last.Type)
}
