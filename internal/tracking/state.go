package tracking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// Actor identifies who performed an operation. Authorization happens upstream;
// the engine only records the identity on the audit trail.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// statusTransitions is the directed status graph. Terminal statuses have no
// outgoing edges. Withdrawn is reachable only through the dedicated Withdraw
// operation, rejected also through the unconditional Reject override.
var statusTransitions = map[types.Status][]types.Status{
	types.StatusApplied:      {types.StatusScreening, types.StatusRejected},
	types.StatusScreening:    {types.StatusInterviewing, types.StatusRejected},
	types.StatusInterviewing: {types.StatusOffered, types.StatusRejected},
	types.StatusOffered:      {types.StatusHired, types.StatusRejected},
	types.StatusHired:        {},
	types.StatusRejected:     {},
	types.StatusWithdrawn:    {},
}

// stageSuccessor is the linear interview pipeline: every stage has exactly one
// successor, no skipping, no reverse moves.
var stageSuccessor = map[types.Stage]types.Stage{
	types.StageScreening:   types.StagePhoneScreen,
	types.StagePhoneScreen: types.StageTechnical,
	types.StageTechnical:   types.StageOnsite,
	types.StageOnsite:      types.StageFinal,
	types.StageFinal:       types.StageOffer,
	types.StageOffer:       types.StageHired,
}

// CanTransitionStatus reports whether from -> to is in the allowed table.
func CanTransitionStatus(from, to types.Status) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NextStage returns the designated successor of a stage, if any.
func NextStage(stage types.Stage) (types.Stage, bool) {
	next, ok := stageSuccessor[stage]
	return next, ok
}

// stageRank orders stages along the pipeline for no-downgrade comparisons.
func stageRank(stage types.Stage) int {
	switch stage {
	case types.StageScreening:
		return 0
	case types.StagePhoneScreen:
		return 1
	case types.StageTechnical:
		return 2
	case types.StageOnsite:
		return 3
	case types.StageFinal:
		return 4
	case types.StageOffer:
		return 5
	case types.StageHired:
		return 6
	default:
		return -1
	}
}

// DeriveStageFromStatus keeps stage consistent with a status change without
// requiring the caller to set both. It never downgrades a stage that is
// already further along the pipeline.
func DeriveStageFromStatus(current types.Stage, newStatus types.Status) types.Stage {
	switch newStatus {
	case types.StatusApplied:
		return types.StageScreening
	case types.StatusScreening:
		return types.StagePhoneScreen
	case types.StatusInterviewing:
		if current == types.StageScreening || current == types.StagePhoneScreen {
			return types.StageTechnical
		}
		return current
	case types.StatusOffered:
		if stageRank(types.StageOffer) > stageRank(current) {
			return types.StageOffer
		}
		return current
	case types.StatusHired:
		return types.StageHired
	default:
		return current
	}
}

// newTimelineEntry builds an audit-trail entry.
func newTimelineEntry(action, description string, actor Actor, now time.Time, metadata map[string]string) types.TimelineEntry {
	return types.TimelineEntry{
		ID:              uuid.New(),
		Action:          action,
		Description:     description,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		Timestamp:       now,
		Metadata:        metadata,
	}
}

// appendTimeline returns a copy of the application with the entry appended and
// LastActivityAt bumped. The timeline slice is cloned so reducers never mutate
// a record shared with other call sites.
func appendTimeline(app types.Application, entry types.TimelineEntry) types.Application {
	timeline := make([]types.TimelineEntry, len(app.Timeline), len(app.Timeline)+1)
	copy(timeline, app.Timeline)
	app.Timeline = append(timeline, entry)
	if entry.Timestamp.After(app.LastActivityAt) {
		app.LastActivityAt = entry.Timestamp
	}
	return app
}

// UpdateStatus transitions the application status along the allowed table,
// appends a status_changed entry and applies the derived-stage rule. The input
// record is unchanged on error.
func UpdateStatus(app types.Application, newStatus types.Status, actor Actor, notes string, now time.Time) (types.Application, error) {
	if !CanTransitionStatus(app.Status, newStatus) {
		return app, invalidStatus(app.Status, newStatus)
	}

	oldStatus, oldStage := app.Status, app.Stage
	app.Status = newStatus
	app.Stage = DeriveStageFromStatus(app.Stage, newStatus)

	metadata := map[string]string{
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	}
	if app.Stage != oldStage {
		metadata["derived_stage"] = string(app.Stage)
	}
	if notes != "" {
		metadata["notes"] = notes
	}

	entry := newTimelineEntry(types.ActionStatusChanged,
		fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
		actor, now, metadata)
	return appendTimeline(app, entry), nil
}

// UpdateStage advances the stage to its single designated successor.
func UpdateStage(app types.Application, newStage types.Stage, actor Actor, notes string, now time.Time) (types.Application, error) {
	next, ok := NextStage(app.Stage)
	if !ok || next != newStage {
		return app, invalidStage(app.Stage, newStage)
	}

	oldStage := app.Stage
	app.Stage = newStage

	metadata := map[string]string{
		"old_stage": string(oldStage),
		"new_stage": string(newStage),
	}
	if notes != "" {
		metadata["notes"] = notes
	}

	entry := newTimelineEntry(types.ActionStageChanged,
		fmt.Sprintf("Stage advanced from %s to %s", oldStage, newStage),
		actor, now, metadata)
	return appendTimeline(app, entry), nil
}

// Reject unconditionally sets status to rejected and writes the rejection
// record. Rejection is the administrative escape hatch: it bypasses the
// transition table and always appends an entry, even on repeat calls.
func Reject(app types.Application, reason, feedback string, actor Actor, sendFeedback bool, now time.Time) types.Application {
	app.Status = types.StatusRejected
	app.Rejection = &types.RejectionData{
		Reason:       reason,
		Feedback:     feedback,
		RejectedBy:   actor.ID,
		RejectedAt:   now,
		FeedbackSent: sendFeedback,
	}

	entry := newTimelineEntry(types.ActionRejected,
		fmt.Sprintf("Application rejected: %s", reason),
		actor, now, map[string]string{"reason": reason})
	return appendTimeline(app, entry)
}

// Withdraw moves a non-terminal application to withdrawn. Candidate-only
// enforcement happens in the service, which knows the caller's identity.
func Withdraw(app types.Application, reason string, actor Actor, now time.Time) (types.Application, error) {
	if app.Status.IsTerminal() {
		return app, invalidStatus(app.Status, types.StatusWithdrawn)
	}

	oldStatus := app.Status
	app.Status = types.StatusWithdrawn

	metadata := map[string]string{"old_status": string(oldStatus)}
	if reason != "" {
		metadata["reason"] = reason
	}

	entry := newTimelineEntry(types.ActionWithdrawn,
		"Application withdrawn by candidate", actor, now, metadata)
	return appendTimeline(app, entry), nil
}

// Rate sets the recruiter rating, recording old and new values.
func Rate(app types.Application, rating int, actor Actor, notes string, now time.Time) (types.Application, error) {
	if rating < 1 || rating > 5 {
		return app, &ErrInvalidRating{Rating: rating}
	}

	oldRating := app.Rating
	app.Rating = rating

	metadata := map[string]string{
		"old_rating": fmt.Sprintf("%d", oldRating),
		"new_rating": fmt.Sprintf("%d", rating),
	}
	if notes != "" {
		metadata["notes"] = notes
	}

	entry := newTimelineEntry(types.ActionRated,
		fmt.Sprintf("Application rated %d/5", rating), actor, now, metadata)
	return appendTimeline(app, entry), nil
}

// Assign sets the reviewer, recording old and new assignees.
func Assign(app types.Application, userID uuid.UUID, actor Actor, now time.Time) types.Application {
	metadata := map[string]string{"new_assignee": userID.String()}
	if app.AssignedTo != nil {
		metadata["old_assignee"] = app.AssignedTo.String()
	}
	app.AssignedTo = &userID

	entry := newTimelineEntry(types.ActionAssigned,
		fmt.Sprintf("Assigned to %s", userID), actor, now, metadata)
	return appendTimeline(app, entry)
}

// Unassign clears the reviewer.
func Unassign(app types.Application, actor Actor, now time.Time) types.Application {
	metadata := map[string]string{}
	if app.AssignedTo != nil {
		metadata["old_assignee"] = app.AssignedTo.String()
	}
	app.AssignedTo = nil

	entry := newTimelineEntry(types.ActionUnassigned, "Assignment removed", actor, now, metadata)
	return appendTimeline(app, entry)
}

// ScheduleInterview appends a scheduled interview, moves the application into
// interviewing status when it is not there yet (scheduling is itself a
// status-changing action), and appends an interview_scheduled entry.
func ScheduleInterview(app types.Application, interview types.ScheduledInterview, actor Actor, now time.Time) (types.Application, error) {
	if app.Status != types.StatusInterviewing {
		updated, err := UpdateStatus(app, types.StatusInterviewing, actor, "", now)
		if err != nil {
			return app, err
		}
		app = updated
	}

	scheduled := make([]types.ScheduledInterview, len(app.Interviews.ScheduledInterviews), len(app.Interviews.ScheduledInterviews)+1)
	copy(scheduled, app.Interviews.ScheduledInterviews)
	app.Interviews.ScheduledInterviews = append(scheduled, interview)

	entry := newTimelineEntry(types.ActionInterviewScheduled,
		fmt.Sprintf("%s interview scheduled", interview.Type),
		actor, now, map[string]string{
			"interview_type": interview.Type,
			"scheduled_at":   interview.ScheduledAt.Format(time.RFC3339),
		})
	return appendTimeline(app, entry), nil
}

// AddInterviewFeedback records one interviewer's verdict.
func AddInterviewFeedback(app types.Application, feedback types.InterviewFeedback, actor Actor, now time.Time) (types.Application, error) {
	if feedback.Rating < 1 || feedback.Rating > 5 {
		return app, &ErrInvalidRating{Rating: feedback.Rating}
	}

	all := make([]types.InterviewFeedback, len(app.Interviews.Feedback), len(app.Interviews.Feedback)+1)
	copy(all, app.Interviews.Feedback)
	app.Interviews.Feedback = append(all, feedback)

	entry := newTimelineEntry(types.ActionInterviewFeedback,
		fmt.Sprintf("Interview feedback submitted: %s", feedback.Recommendation),
		actor, now, map[string]string{
			"rating":         fmt.Sprintf("%d", feedback.Rating),
			"recommendation": feedback.Recommendation,
		})
	return appendTimeline(app, entry), nil
}

// AddCommunication appends a contact record and its audit entry.
func AddCommunication(app types.Application, comm types.Communication, actor Actor, now time.Time) types.Application {
	comms := make([]types.Communication, len(app.Communications), len(app.Communications)+1)
	copy(comms, app.Communications)
	app.Communications = append(comms, comm)

	entry := newTimelineEntry(types.ActionCommunicationSent,
		fmt.Sprintf("%s %s logged", comm.Direction, comm.Type),
		actor, now, map[string]string{
			"type":      comm.Type,
			"direction": comm.Direction,
		})
	return appendTimeline(app, entry)
}

// AddNote appends a free-text note to the audit trail.
func AddNote(app types.Application, note string, actor Actor, now time.Time) types.Application {
	entry := newTimelineEntry(types.ActionNoteAdded, note, actor, now, nil)
	return appendTimeline(app, entry)
}
