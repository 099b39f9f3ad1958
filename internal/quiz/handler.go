package quiz

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/auth"
	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/observability"
)

type Handler struct {
	service *Service
	logger  *observability.Logger
}

func NewHandler(service *Service, logger *observability.Logger) *Handler {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the quiz endpoints on r, which is expected to be the
// /api/v1 subrouter.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/quiz/kinds", h.ListKinds).Methods("GET")
	r.HandleFunc("/quiz/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/quiz/history/stats", h.GetHistoryStats).Methods("GET")
	r.HandleFunc("/quiz/{kind}", h.GetQuestion).Methods("GET")
	r.HandleFunc("/quiz/{kind}/answers", h.SubmitAnswer).Methods("POST")
}

func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"kinds": Kinds})
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	opts, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	question, err := h.service.Generate(r.Context(), kind, opts...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var sub AnswerSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(apperrors.ErrorCodeInvalidInput),
		})
		return
	}

	var userID *int64
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		userID = &uid
	}

	logged, err := h.service.RecordAnswer(r.Context(), userID, kind, sub)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if logged == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, logged)
}

// GetHistory lists the caller's logged answers. Optional kind, page and
// page_size query parameters.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperrors.ErrorWithContextf(apperrors.ErrUnauthorized, "authentication required"))
		return
	}

	query := r.URL.Query()
	page, _, err := intParam(query, "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pageSize, _, err := intParam(query, "page_size")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.History(r.Context(), userID, query.Get("kind"), page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetHistoryStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperrors.ErrorWithContextf(apperrors.ErrUnauthorized, "authentication required"))
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "Quiz request failed", err, map[string]interface{}{"path": r.URL.Path})
		writeJSON(w, status, models.ErrorResponse{Error: "Internal server error", Code: string(apperrors.GetErrorCode(err))})
		return
	}
	writeJSON(w, status, models.ErrorResponse{Error: err.Error(), Code: string(apperrors.GetErrorCode(err))})
}

// criteriaFromQuery reads week_from, week_to, cycles, year_from, year_to,
// count and people_groups. Absent parameters keep the service defaults.
func criteriaFromQuery(query url.Values) ([]models.CriteriaOption, error) {
	var opts []models.CriteriaOption

	weekFrom, hasWeekFrom, err := intParam(query, "week_from")
	if err != nil {
		return nil, err
	}
	weekTo, hasWeekTo, err := intParam(query, "week_to")
	if err != nil {
		return nil, err
	}
	if hasWeekFrom != hasWeekTo {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "week_from and week_to must be given together")
	}
	if hasWeekFrom {
		opts = append(opts, models.WithWeeks(weekFrom, weekTo))
	}

	yearFrom, hasYearFrom, err := intParam(query, "year_from")
	if err != nil {
		return nil, err
	}
	yearTo, hasYearTo, err := intParam(query, "year_to")
	if err != nil {
		return nil, err
	}
	if hasYearFrom != hasYearTo {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "year_from and year_to must be given together")
	}
	if hasYearFrom {
		opts = append(opts, models.WithYears(yearFrom, yearTo))
	}

	if raw := query.Get("cycles"); raw != "" {
		var cycles []int
		for _, part := range strings.Split(raw, ",") {
			c, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "invalid cycle %q", part)
			}
			cycles = append(cycles, c)
		}
		opts = append(opts, models.WithCycles(cycles...))
	}

	count, hasCount, err := intParam(query, "count")
	if err != nil {
		return nil, err
	}
	if hasCount {
		opts = append(opts, models.WithCount(count))
	}

	if raw := query.Get("people_groups"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "invalid people_groups %q", raw)
		}
		opts = append(opts, models.WithPeopleGroups(include))
	}

	return opts, nil
}

func intParam(query url.Values, key string) (int, bool, error) {
	s := query.Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "invalid %s %q", key, s)
	}
	return v, true, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
