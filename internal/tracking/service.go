package tracking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applicant-tracker/internal/events"
	"github.com/jonathan/applicant-tracker/internal/matching"
	"github.com/jonathan/applicant-tracker/internal/screening"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// defaultBulkConcurrency caps how many records a bulk update touches at once.
const defaultBulkConcurrency = 8

// Store persists application records. Implementations must round-trip nested
// structures (timeline, communications, screening data) with full fidelity.
//
// Save is last-write-wins at the record level: there is no version check, so
// when two callers race on the same record the later Save determines final
// state and the earlier writer's timeline entry is lost. Known limitation.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*types.Application, error)
	FindByJobAndCandidate(ctx context.Context, jobID, candidateID uuid.UUID) (*types.Application, error)
	FindByJobAndEmail(ctx context.Context, jobID uuid.UUID, email string) (*types.Application, error)
	Save(ctx context.Context, app types.Application) (*types.Application, error)
	FindMany(ctx context.Context, filter types.ApplicationFilter, page, limit int) ([]types.Application, int, error)
}

// JobStore looks up the job an application targets.
type JobStore interface {
	FindJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error)
}

// ResumeStore looks up parsed resumes for screening.
type ResumeStore interface {
	FindResumeByID(ctx context.Context, id uuid.UUID) (*types.Resume, error)
}

// SkillCatalog lists the reference skill catalog used for category tagging.
// Optional; absence degrades to untagged matches.
type SkillCatalog interface {
	ListSkills(ctx context.Context) ([]types.CatalogSkill, error)
}

// Service orchestrates every mutation of application records: it is the only
// component that reads and writes the store, wraps each operation in the state
// machine reducers, and guarantees exactly one persisted write per logical
// operation.
type Service struct {
	store   Store
	jobs    JobStore
	resumes ResumeStore
	catalog SkillCatalog
	sink    events.Sink
	log     *zap.Logger

	matchThreshold float64
	bulkLimit      int
	now            func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSkillCatalog wires the optional reference skill catalog.
func WithSkillCatalog(catalog SkillCatalog) ServiceOption {
	return func(s *Service) { s.catalog = catalog }
}

// WithEventSink wires the lifecycle event sink.
func WithEventSink(sink events.Sink) ServiceOption {
	return func(s *Service) { s.sink = sink }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithMatchThreshold overrides the skill-match confidence threshold.
func WithMatchThreshold(threshold float64) ServiceOption {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.matchThreshold = threshold
		}
	}
}

// WithBulkConcurrency caps bulk-update fan-out.
func WithBulkConcurrency(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.bulkLimit = limit
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates the tracking service.
func NewService(store Store, jobs JobStore, resumes ResumeStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:          store,
		jobs:           jobs,
		resumes:        resumes,
		log:            zap.NewNop(),
		matchThreshold: matching.DefaultThreshold,
		bulkLimit:      defaultBulkConcurrency,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create submits a new application. Duplicate candidate/job (or external
// email/job) pairs are rejected, as are closed or missing jobs. When a resume
// is attached, screening runs synchronously so the first persisted write
// already carries the initial screening data.
func (s *Service) Create(ctx context.Context, req *types.CreateApplicationRequest, actor Actor) (*types.Application, error) {
	if (req.CandidateID == nil) == (req.ExternalEmail == "") {
		return nil, &ErrInvalidApplication{Reason: "exactly one of candidate_id or external_email must be set"}
	}

	job, err := s.jobs.FindJobByID(ctx, req.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Kind: "job", ID: req.JobID}
	}
	if !job.IsAcceptingApplications() {
		return nil, &ErrJobNotAcceptingApplications{JobID: job.ID, Status: job.Status}
	}

	if err := s.checkDuplicate(ctx, req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	app := types.Application{
		ID:                    uuid.New(),
		JobID:                 req.JobID,
		Status:                types.StatusApplied,
		Stage:                 types.StageScreening,
		CandidateID:           req.CandidateID,
		ExternalEmail:         req.ExternalEmail,
		ExternalName:          req.ExternalName,
		ResumeID:              req.ResumeID,
		CoverLetter:           req.CoverLetter,
		QuestionnaireAnswered: req.QuestionnaireAnswered,
		Attachments:           req.Attachments,
		Screening: types.ScreeningData{
			SalaryExpectation: req.SalaryExpectation,
			Availability:      req.Availability,
		},
		AppliedAt:      now,
		LastActivityAt: now,
	}
	app = appendTimeline(app, newTimelineEntry(types.ActionCreated, "Application submitted", actor, now, nil))

	if req.ResumeID != nil {
		s.screen(ctx, &app, job)
	}

	saved, err := s.store.Save(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.emit(ctx, events.TypeApplicationCreated, saved, actor, nil)
	return saved, nil
}

// checkDuplicate fails when the same candidate (or external email) already
// applied to the job.
func (s *Service) checkDuplicate(ctx context.Context, req *types.CreateApplicationRequest) error {
	var existing *types.Application
	var err error
	if req.CandidateID != nil {
		existing, err = s.store.FindByJobAndCandidate(ctx, req.JobID, *req.CandidateID)
	} else {
		existing, err = s.store.FindByJobAndEmail(ctx, req.JobID, strings.ToLower(strings.TrimSpace(req.ExternalEmail)))
	}
	if err != nil {
		return fmt.Errorf("failed to check for duplicate application: %w", err)
	}
	if existing != nil {
		return &ErrDuplicateApplication{JobID: req.JobID}
	}
	return nil
}

// Get retrieves one application.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	return s.load(ctx, id)
}

// List retrieves a filtered page of applications plus the total count.
func (s *Service) List(ctx context.Context, filter types.ApplicationFilter, page, limit int) ([]types.Application, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return s.store.FindMany(ctx, filter, page, limit)
}

// Update applies a partial update in the fixed order status, stage, rating,
// assignment, notes, screening merge. Applying status before stage means a
// derived-stage change never overwrites an explicit stage in the same request.
// An empty patch is a no-op and does not touch the store.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *types.UpdateApplicationRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return app, nil
	}

	updated, err := s.applyUpdate(*app, req, actor)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.emit(ctx, events.TypeApplicationUpdated, saved, actor, nil)
	return saved, nil
}

// applyUpdate runs the reducers for a patch in the fixed order. Pure with
// respect to the store: the caller persists the result.
func (s *Service) applyUpdate(app types.Application, req *types.UpdateApplicationRequest, actor Actor) (types.Application, error) {
	now := s.now().UTC()
	var err error

	if req.Status != nil {
		if app, err = UpdateStatus(app, *req.Status, actor, req.Notes, now); err != nil {
			return app, err
		}
	}
	if req.Stage != nil {
		if app, err = UpdateStage(app, *req.Stage, actor, req.Notes, now); err != nil {
			return app, err
		}
	}
	if req.Rating != nil {
		if app, err = Rate(app, *req.Rating, actor, req.Notes, now); err != nil {
			return app, err
		}
	}
	if req.AssignedTo != nil {
		app = Assign(app, *req.AssignedTo, actor, now)
	} else if req.Unassign {
		app = Unassign(app, actor, now)
	}
	if req.Notes != "" && req.Status == nil && req.Stage == nil && req.Rating == nil {
		app = AddNote(app, req.Notes, actor, now)
	}
	if req.Screening != nil {
		app = mergeScreening(app, req.Screening, actor, now)
	}

	return app, nil
}

// mergeScreening overlays non-nil screening sub-documents onto the record.
func mergeScreening(app types.Application, patch *types.ScreeningData, actor Actor, now time.Time) types.Application {
	if patch.AutoScreeningScore != nil {
		app.Screening.AutoScreeningScore = patch.AutoScreeningScore
	}
	if patch.SkillsMatch != nil {
		app.Screening.SkillsMatch = patch.SkillsMatch
	}
	if patch.ExperienceMatch != nil {
		app.Screening.ExperienceMatch = patch.ExperienceMatch
	}
	if patch.SalaryExpectation != nil {
		app.Screening.SalaryExpectation = patch.SalaryExpectation
	}
	if patch.Availability != nil {
		app.Screening.Availability = patch.Availability
	}

	entry := newTimelineEntry(types.ActionScreeningUpdated, "Screening data updated", actor, now, nil)
	return appendTimeline(app, entry)
}

// BulkUpdate applies the same patch to many records. Partially tolerant: a
// rule violation or missing record is collected as an error string and
// skipped, never fatal for the batch. Records commit independently.
func (s *Service) BulkUpdate(ctx context.Context, ids []uuid.UUID, req *types.UpdateApplicationRequest, actor Actor) (*types.BulkUpdateResult, error) {
	var mu sync.Mutex
	result := &types.BulkUpdateResult{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkLimit)

	for _, id := range ids {
		g.Go(func() error {
			_, err := s.Update(ctx, id, req, actor)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				return nil // per-record errors never abort the batch
			}
			result.UpdatedCount++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Rate sets the recruiter rating on the application.
func (s *Service) Rate(ctx context.Context, id uuid.UUID, req *types.RateRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := Rate(*app, req.Rating, actor, req.Notes, s.now().UTC())
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return saved, nil
}

// Assign assigns the application to a reviewer.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, req *types.AssignRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := Assign(*app, req.AssignedTo, actor, s.now().UTC())

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return saved, nil
}

// Reject rejects the application. Always possible, even on an already
// rejected record: the status stays rejected and one more entry is appended.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, req *types.RejectRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := Reject(*app, req.Reason, req.Feedback, actor, req.SendFeedback, s.now().UTC())

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.emit(ctx, events.TypeApplicationRejected, saved, actor, map[string]string{"reason": req.Reason})
	return saved, nil
}

// Withdraw withdraws the application on behalf of its candidate. Only the
// owning registered candidate may withdraw.
func (s *Service) Withdraw(ctx context.Context, id uuid.UUID, req *types.WithdrawRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.CandidateID == nil || *app.CandidateID != actor.ID {
		return nil, &ErrForbidden{Reason: "only the applying candidate may withdraw"}
	}

	updated, err := Withdraw(*app, req.Reason, actor, s.now().UTC())
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.emit(ctx, events.TypeApplicationWithdrawn, saved, actor, nil)
	return saved, nil
}

// ScheduleInterview schedules an interview round, which also moves the
// application into interviewing status when needed.
func (s *Service) ScheduleInterview(ctx context.Context, id uuid.UUID, req *types.ScheduleInterviewRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	interview := types.ScheduledInterview{
		ID:           uuid.New(),
		Type:         req.Type,
		ScheduledAt:  req.ScheduledAt,
		DurationMins: req.DurationMins,
		Interviewers: req.Interviewers,
		Location:     req.Location,
		Notes:        req.Notes,
	}

	updated, err := ScheduleInterview(*app, interview, actor, s.now().UTC())
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.emit(ctx, events.TypeInterviewScheduled, saved, actor, map[string]string{"interview_type": req.Type})
	return saved, nil
}

// AddInterviewFeedback records an interviewer's verdict.
func (s *Service) AddInterviewFeedback(ctx context.Context, id uuid.UUID, req *types.InterviewFeedbackRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	feedback := types.InterviewFeedback{
		ID:             uuid.New(),
		InterviewID:    req.InterviewID,
		Interviewer:    actor.ID,
		Rating:         req.Rating,
		Recommendation: req.Recommendation,
		Comments:       req.Comments,
		SubmittedAt:    s.now().UTC(),
	}

	updated, err := AddInterviewFeedback(*app, feedback, actor, feedback.SubmittedAt)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return saved, nil
}

// AddCommunication logs a contact with the candidate.
func (s *Service) AddCommunication(ctx context.Context, id uuid.UUID, req *types.CommunicationRequest, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	comm := types.Communication{
		ID:        uuid.New(),
		Type:      req.Type,
		Direction: req.Direction,
		Subject:   req.Subject,
		Body:      req.Body,
		SentBy:    actor.ID,
		SentAt:    now,
	}

	updated := AddCommunication(*app, comm, actor, now)

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return saved, nil
}

// AttachResume links a resume to the application and screens it immediately,
// all within the operation's single persisted write.
func (s *Service) AttachResume(ctx context.Context, id, resumeID uuid.UUID, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.FindJobByID(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Kind: "job", ID: app.JobID}
	}

	updated := *app
	updated.ResumeID = &resumeID
	s.screen(ctx, &updated, job)
	updated = appendTimeline(updated, newTimelineEntry(types.ActionScreeningUpdated,
		"Resume attached and screened", actor, s.now().UTC(),
		map[string]string{"resume_id": resumeID.String()}))

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return saved, nil
}

// RecomputeScreening re-runs skill matching and scoring against the current
// job and resume. A missing resume degrades to partial scoring; a missing job
// is fatal because there is nothing to score against.
func (s *Service) RecomputeScreening(ctx context.Context, id uuid.UUID, actor Actor) (*types.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.FindJobByID(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Kind: "job", ID: app.JobID}
	}

	updated := *app
	s.screen(ctx, &updated, job)
	updated = appendTimeline(updated, newTimelineEntry(types.ActionScreeningUpdated,
		"Auto-screening recomputed", actor, s.now().UTC(), nil))

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return saved, nil
}

// screen fills in the screening sub-document from the resume, the job's
// required skills and the optional catalog. External lookup failures degrade
// to partial scoring: the affected components are simply left out of the
// composite.
func (s *Service) screen(ctx context.Context, app *types.Application, job *types.Job) {
	input := screening.Input{
		RequiredLevel:         job.ExperienceLevel,
		HasCoverLetter:        app.CoverLetter != "",
		QuestionnaireAnswered: app.QuestionnaireAnswered,
		HasAttachments:        len(app.Attachments) > 0,
	}

	var resume *types.Resume
	if app.ResumeID != nil {
		var err error
		resume, err = s.resumes.FindResumeByID(ctx, *app.ResumeID)
		if err != nil {
			s.log.Warn("resume lookup failed, screening with partial data",
				zap.String("application_id", app.ID.String()), zap.Error(err))
			resume = nil
		}
	}

	if resume != nil {
		matcher := matching.NewMatcher(
			matching.WithThreshold(s.matchThreshold),
			matching.WithCatalog(s.catalogSkills(ctx)),
		)

		candidateSkills := make([]string, len(resume.Skills))
		for i, skill := range resume.Skills {
			candidateSkills[i] = skill.Name
		}

		match := matcher.Match(candidateSkills, job.SkillsRequired)
		app.Screening.SkillsMatch = &types.SkillsMatch{
			Required: job.SkillsRequired,
			Matched:  match.MatchedNames(),
			Missing:  match.Missing,
			Score:    match.Score,
		}
		input.SkillsScore = &match.Score

		years := screening.TotalExperienceYears(resume.Experience, s.now().UTC())
		app.Screening.ExperienceMatch = &types.ExperienceMatch{
			Required:  job.ExperienceLevel,
			Candidate: years,
			Score:     screening.ExperienceScore(years, job.ExperienceLevel),
		}
		input.CandidateYears = &years

		if resume.EstimatedATSScore != nil {
			quality := float64(*resume.EstimatedATSScore)
			input.ResumeQuality = &quality
		}
	}

	score := screening.Composite(input)
	app.Screening.AutoScreeningScore = &score
}

// catalogSkills fetches the reference catalog, degrading to nil on absence or
// failure so matches simply carry no category.
func (s *Service) catalogSkills(ctx context.Context) []types.CatalogSkill {
	if s.catalog == nil {
		return nil
	}
	skills, err := s.catalog.ListSkills(ctx)
	if err != nil {
		s.log.Warn("skill catalog lookup failed, matching without categories", zap.Error(err))
		return nil
	}
	return skills
}

// load fetches a record or returns ErrNotFound.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	app, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, &ErrNotFound{Kind: "application", ID: id}
	}
	return app, nil
}

// emit publishes a lifecycle event. Failures are logged and swallowed: the
// event sink must never fail or roll back a committed operation.
func (s *Service) emit(ctx context.Context, eventType string, app *types.Application, actor Actor, metadata map[string]string) {
	if s.sink == nil {
		return
	}
	event := events.Event{
		Type:          eventType,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ActorID:       actor.ID,
		OccurredAt:    s.now().UTC(),
		Metadata:      metadata,
	}
	if err := s.sink.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.String("application_id", app.ID.String()),
			zap.Error(err))
	}
}
