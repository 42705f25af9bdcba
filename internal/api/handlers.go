package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/repository"
	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/service"
)

const (
	defaultCacheDuration  = 5 * time.Minute
	defaultRequestTimeout = 10 * time.Second

	// Waiting on a remote analysis spans many poll cycles, so it gets a
	// much longer budget than ordinary requests.
	awaitTimeout = 3 * time.Minute
)

const cacheKeyTeamReport = "api:team_report"

// Handlers serves the HTTP API.
type Handlers struct {
	auth        AuthService
	assessments AssessmentService
	reports     ReportService
	companies   CompanyService
	cache       *ReportCache
	logger      *zap.Logger
}

// NewHandlers initializes the HTTP handlers. The cache is optional; when nil,
// team reports are computed on every request.
func NewHandlers(auth AuthService, assessments AssessmentService, reports ReportService, companies CompanyService, cache Cacher, logger *zap.Logger, ttl time.Duration) *Handlers {
	if auth == nil || assessments == nil || reports == nil || companies == nil {
		panic("nil service provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	h := &Handlers{
		auth:        auth,
		assessments: assessments,
		reports:     reports,
		companies:   companies,
		logger:      logger.Named("api-handler"),
	}
	if cache != nil {
		h.cache = NewReportCache(cache, ttl, h.logger)
	}
	return h
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, dest any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseRange reads optional from/to query parameters. Dates may be RFC 3339
// timestamps or plain YYYY-MM-DD days; a day given as "to" is inclusive of
// the whole day.
func parseRange(r *http.Request) (*service.DateRange, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}
	if fromRaw == "" || toRaw == "" {
		return nil, errors.New("from and to must be provided together")
	}

	from, err := parseTimeParam(fromRaw, false)
	if err != nil {
		return nil, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := parseTimeParam(toRaw, true)
	if err != nil {
		return nil, fmt.Errorf("invalid to date: %w", err)
	}
	if to.Before(from) {
		return nil, errors.New("to must not be before from")
	}
	return &service.DateRange{Start: from, End: to}, nil
}

func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t.UTC(), nil
}

func (h *Handlers) handleError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch ctx.Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		respondError(w, http.StatusRequestTimeout, "request canceled")
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		respondError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrNotAuthorized):
		h.logger.Info("request not authorized", zap.String("op", op))
		respondError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, convai.ErrConversationNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrAlreadyMember):
		respondError(w, http.StatusConflict, "user already belongs to a company")
	case errors.Is(err, service.ErrInviteAccepted):
		respondError(w, http.StatusConflict, "invite already accepted")
	case errors.Is(err, service.ErrInviteExpired):
		respondError(w, http.StatusGone, "invite expired")
	case errors.Is(err, service.ErrAnalysisFailed):
		h.logger.Info("analysis failed", zap.String("op", op), zap.Error(err))
		respondError(w, http.StatusUnprocessableEntity, "conversation analysis failed")
	case errors.Is(err, convai.ErrRemoteAPI), errors.Is(err, convai.ErrNoAPIKey):
		h.logger.Error("conversation platform error", zap.String("op", op), zap.Error(err))
		respondError(w, http.StatusBadGateway, "conversation platform unavailable")
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := h.auth.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.handleError(ctx, w, "Signup", err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: result.Token, UserID: result.UserID, Username: result.Username})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.handleError(ctx, w, "Login", err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: result.Token, UserID: result.UserID, Username: result.Username})
}

// GetConversation returns the conversation's current remote state without
// waiting for the analysis to finish.
func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		respondError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	view, err := h.assessments.Snapshot(ctx, conversationID)
	if err != nil {
		h.handleError(ctx, w, "GetConversation", err)
		return
	}
	respondJSON(w, http.StatusOK, mapAssessmentView(view))
}

// GetAnalysis returns the conversation's analysis. With ?wait=1 the request
// blocks until the remote analysis reaches a terminal state.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		respondError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	wait := r.URL.Query().Get("wait") == "1"

	timeout := defaultRequestTimeout
	if wait {
		timeout = awaitTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	var (
		view *service.AssessmentView
		err  error
	)
	if wait {
		view, err = h.assessments.AwaitAnalysis(ctx, conversationID)
	} else {
		view, err = h.assessments.Snapshot(ctx, conversationID)
	}
	if err != nil {
		h.handleError(ctx, w, "GetAnalysis", err)
		return
	}
	respondJSON(w, http.StatusOK, mapAssessmentView(view))
}

// SubmitAssessment waits for the conversation's analysis and stores a durable
// copy under the authenticated user.
func (h *Handlers) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req submitAssessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ConversationID == "" {
		respondError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), awaitTimeout)
	defer cancel()

	record, err := h.assessments.Submit(ctx, claims.UserID, req.ConversationID)
	if err != nil {
		h.handleError(ctx, w, "SubmitAssessment", err)
		return
	}
	respondJSON(w, http.StatusCreated, submitResponse{
		RecordID:       record.ID,
		ConversationID: record.ConversationID,
		CreatedAt:      record.CreatedAt,
	})
}

// ListAssessments returns the authenticated user's submitted assessments,
// newest first.
func (h *Handlers) ListAssessments(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	reports, err := h.assessments.History(ctx, claims.UserID, rng)
	if err != nil {
		h.handleError(ctx, w, "ListAssessments", err)
		return
	}
	respondJSON(w, http.StatusOK, mapIndividualReports(reports))
}

// TeamReport returns the viewer's company aggregate. Results are cached per
// company and date range.
func (h *Handlers) TeamReport(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	fetch := func(fetchCtx context.Context) (*service.TeamReport, error) {
		return h.reports.TeamReport(fetchCtx, claims.UserID, rng)
	}

	var report *service.TeamReport
	if h.cache != nil {
		member, err := h.companies.Membership(ctx, claims.UserID)
		if err != nil {
			h.handleError(ctx, w, "TeamReport", err)
			return
		}
		if member == nil || (member.Role != models.RoleHR && member.Role != models.RoleAdmin) {
			h.logger.Info("request not authorized", zap.String("op", "TeamReport"))
			respondError(w, http.StatusForbidden, "not authorized")
			return
		}
		report, err = Cached(ctx, h.cache, teamReportKey(member.CompanyID, rng), fetch)
		if err != nil {
			h.handleError(ctx, w, "TeamReport", err)
			return
		}
	} else {
		report, err = fetch(ctx)
		if err != nil {
			h.handleError(ctx, w, "TeamReport", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, mapTeamReport(report))
}

func teamReportKey(companyID string, rng *service.DateRange) string {
	window := "all"
	if rng != nil {
		window = fmt.Sprintf("%s:%s", rng.Start.UTC().Format("2006-01-02"), rng.End.UTC().Format("2006-01-02"))
	}
	return fmt.Sprintf("%s:%s:%s", cacheKeyTeamReport, companyID, window)
}

// Stats returns admin dashboard counters.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	stats, err := h.reports.Stats(ctx, claims.UserID)
	if err != nil {
		h.handleError(ctx, w, "Stats", err)
		return
	}
	respondJSON(w, http.StatusOK, statsJSON{TotalAssessments: stats.TotalAssessments})
}

func (h *Handlers) CreateCompany(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req createCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	company, err := h.companies.Create(ctx, claims.UserID, req.Name)
	if err != nil {
		h.handleError(ctx, w, "CreateCompany", err)
		return
	}
	respondJSON(w, http.StatusCreated, mapCompany(company))
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	members, err := h.companies.Members(ctx, claims.UserID)
	if err != nil {
		h.handleError(ctx, w, "ListMembers", err)
		return
	}
	respondJSON(w, http.StatusOK, mapMembers(members))
}

// Membership returns the viewer's company membership, or 404 when they have
// none.
func (h *Handlers) Membership(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	member, err := h.companies.Membership(ctx, claims.UserID)
	if err != nil {
		h.handleError(ctx, w, "Membership", err)
		return
	}
	if member == nil {
		respondError(w, http.StatusNotFound, "no company membership")
		return
	}
	respondJSON(w, http.StatusOK, memberJSON{
		UserID:   member.UserID,
		Username: member.Username,
		Email:    member.Email,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	})
}

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	invite, err := h.companies.Invite(ctx, claims.UserID, req.Email)
	if err != nil {
		h.handleError(ctx, w, "CreateInvite", err)
		return
	}
	respondJSON(w, http.StatusCreated, inviteJSON{
		ID:        invite.ID,
		Email:     invite.Email,
		ExpiresAt: invite.ExpiresAt,
	})
}

func (h *Handlers) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req acceptInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	company, err := h.companies.AcceptInvite(ctx, claims.UserID, req.Token)
	if err != nil {
		h.handleError(ctx, w, "AcceptInvite", err)
		return
	}
	respondJSON(w, http.StatusOK, mapCompany(company))
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
