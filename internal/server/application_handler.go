package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/tracking"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// actorFromRequest converts the authenticated identity into a tracking actor.
// Anonymous requests (external candidates submitting) get a zero actor.
func actorFromRequest(r *http.Request) tracking.Actor {
	identity, ok := middleware.GetActor(r)
	if !ok {
		return tracking.Actor{}
	}
	return tracking.Actor{ID: identity.ID, Name: identity.Name}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

// handleCreateApplication submits a new application.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req types.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Authenticated submitters apply as themselves.
	if identity, ok := middleware.GetActor(r); ok && req.CandidateID == nil && req.ExternalEmail == "" {
		req.CandidateID = &identity.ID
	}

	app, err := s.tracker.Create(r.Context(), &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleGetApplication retrieves one application.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	app, err := s.tracker.Get(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// listApplicationsResponse is the paginated list payload.
type listApplicationsResponse struct {
	Applications []types.Application `json:"applications"`
	Total        int                 `json:"total"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
}

// handleListApplications retrieves a filtered page of applications.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter types.ApplicationFilter
	if v := query.Get("job_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid job_id")
			return
		}
		filter.JobID = &id
	}
	if v := query.Get("candidate_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid candidate_id")
			return
		}
		filter.CandidateID = &id
	}
	if v := query.Get("assigned_to"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid assigned_to")
			return
		}
		filter.AssignedTo = &id
	}
	filter.Status = types.Status(query.Get("status"))
	filter.Stage = types.Stage(query.Get("stage"))

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	apps, total, err := s.tracker.List(r.Context(), filter, page, limit)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, listApplicationsResponse{
		Applications: apps,
		Total:        total,
		Page:         page,
		Limit:        limit,
	})
}

// handleUpdateApplication applies a partial update.
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.UpdateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	app, err := s.tracker.Update(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleBulkUpdate applies one patch to many applications.
func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req types.BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.tracker.BulkUpdate(r.Context(), req.IDs, &req.Update, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRate sets the recruiter rating on an application.
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.tracker.Rate(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleAssign assigns an application to a reviewer.
func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.tracker.Assign(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleReject rejects an application.
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.tracker.Reject(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleWithdraw withdraws an application on behalf of the candidate.
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	app, err := s.tracker.Withdraw(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleScheduleInterview schedules an interview round.
func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.ScheduleInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.tracker.ScheduleInterview(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleInterviewFeedback records an interviewer's verdict.
func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.InterviewFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.tracker.AddInterviewFeedback(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleAddCommunication logs a contact with the candidate.
func (s *Server) handleAddCommunication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req types.CommunicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.tracker.AddCommunication(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// attachResumeRequest links a resume to an application.
type attachResumeRequest struct {
	ResumeID uuid.UUID `json:"resume_id"`
}

// handleAttachResume links a resume and screens it immediately.
func (s *Server) handleAttachResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req attachResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ResumeID == uuid.Nil {
		s.errorResponse(w, http.StatusBadRequest, "resume_id is required")
		return
	}

	app, err := s.tracker.AttachResume(r.Context(), id, req.ResumeID, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleRecomputeScreening re-runs auto-screening for an application.
func (s *Server) handleRecomputeScreening(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	app, err := s.tracker.RecomputeScreening(r.Context(), id, actorFromRequest(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}
