/*
handlers.go - HTTP handler implementations

PURPOSE:
  Translates HTTP requests into Organization operations and domain
  results back into DTOs.

STATUS CODE CONVENTION:
  The facade reports business-rule failures (duplicate key, missing
  reference, insufficient funds) as a false "applied" result with a nil
  error. Handlers map that to 409 Conflict with {"applied": false};
  only structural failures (bad JSON, bad path params) become 400 and
  persistence failures 500.

SEE ALSO:
  - server.go: route wiring
  - dto.go: request/response types
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/club-ledger/club"
	"github.com/warp/club-ledger/ledger"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	org    *club.Organization
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(org *club.Organization, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{org: org, logger: logger, now: time.Now}
}

// =============================================================================
// MEMBERS
// =============================================================================

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members := h.org.Members()
	now := h.now()
	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toMemberDTO(m, now))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id", err)
		return
	}
	m, ok := h.org.Member(id)
	if !ok {
		writeError(w, http.StatusNotFound, "member not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m, h.now()))
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	m := memberFromRequest(req, h.now())
	h.applied(w, r, http.StatusCreated, func() (bool, error) {
		return h.org.AddMember(r.Context(), m)
	})
}

func (h *Handler) ModifyMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id", err)
		return
	}
	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.NationalID = id
	m := memberFromRequest(req, h.now())
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.ModifyMember(r.Context(), m)
	})
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id", err)
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.RemoveMember(r.Context(), id)
	})
}

func memberFromRequest(req MemberRequest, now time.Time) *club.Member {
	m := &club.Member{
		NationalID: req.NationalID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Tier:       req.Tier,
		PlanMonths: req.PlanMonths,
		EnrolledAt: now,
	}
	if req.AccountNumber != "" {
		m.Account = ledger.NewAccount(req.AccountNumber, decimal.Zero, m.FullName())
	}
	if req.PlanMonths > 0 {
		m.PlanExpiry = now.AddDate(0, req.PlanMonths, 0)
	}
	return m
}

// =============================================================================
// STAFF
// =============================================================================

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff := h.org.StaffList()
	dtos := make([]StaffDTO, 0, len(staff))
	for _, s := range staff {
		dtos = append(dtos, toStaffDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff id", err)
		return
	}
	s, ok := h.org.StaffByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "staff not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStaffDTO(s))
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	s, ok := h.decodeStaff(w, r, 0)
	if !ok {
		return
	}
	h.applied(w, r, http.StatusCreated, func() (bool, error) {
		return h.org.AddStaff(r.Context(), s)
	})
}

func (h *Handler) ModifyStaff(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff id", err)
		return
	}
	s, ok := h.decodeStaff(w, r, id)
	if !ok {
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.ModifyStaff(r.Context(), s)
	})
}

func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff id", err)
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.RemoveStaff(r.Context(), id)
	})
}

// decodeStaff parses and validates a staff request body. A non-zero id
// overrides the body's national id (path param wins on modify).
func (h *Handler) decodeStaff(w http.ResponseWriter, r *http.Request, id int) (*club.Staff, bool) {
	var req StaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}
	if id != 0 {
		req.NationalID = id
	}
	salary, err := decimal.NewFromString(req.Salary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid salary", err)
		return nil, false
	}
	s := &club.Staff{
		NationalID: req.NationalID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Sex:        req.Sex,
		Salary:     salary,
	}
	if req.BirthDate != "" {
		birth, err := time.Parse(club.CatalogDateLayout, req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid birth date", err)
			return nil, false
		}
		s.BirthDate = birth
	}
	switch req.Role {
	case "TRAINER", "trainer":
		s.Role = club.TrainerRole(req.Specialty)
	case "SUPPORT", "support":
		s.Role = club.SupportRole(req.Shift, req.Area)
	default:
		writeError(w, http.StatusBadRequest, "role must be TRAINER or SUPPORT", nil)
		return nil, false
	}
	return s, true
}

// =============================================================================
// SESSIONS
// =============================================================================

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.org.Sessions()
	dtos := make([]SessionDTO, 0, len(sessions))
	for _, c := range sessions {
		dtos = append(dtos, toSessionDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	c, ok := h.org.Session(key)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(c))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	c := club.NewSession(req.Name, req.Day, req.Shift, req.Capacity, req.StaffID)
	h.applied(w, r, http.StatusCreated, func() (bool, error) {
		return h.org.AddSession(r.Context(), c)
	})
}

func (h *Handler) ModifySession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	c := club.NewSession(req.Name, key.Day, key.Shift, req.Capacity, req.StaffID)
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.ModifySession(r.Context(), c)
	})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.RemoveSession(r.Context(), key)
	})
}

func (h *Handler) EnrollInSession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.EnrollInSession(req.MemberID, key), nil
	})
}

func (h *Handler) WithdrawFromSession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.WithdrawFromSession(req.MemberID, key), nil
	})
}

func sessionKey(r *http.Request) club.SessionKey {
	return club.SessionKey{
		Day:   chi.URLParam(r, "day"),
		Shift: chi.URLParam(r, "shift"),
	}
}

// =============================================================================
// FINANCIAL
// =============================================================================

func (h *Handler) PayDues(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.RecordDuesPayment(r.Context(), req.NationalID, amount)
	})
}

func (h *Handler) PayPayroll(w http.ResponseWriter, r *http.Request) {
	var req PayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.RecordPayroll(r.Context(), req.NationalID)
	})
}

func (h *Handler) VoidPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}
	h.applied(w, r, http.StatusOK, func() (bool, error) {
		return h.org.VoidPayment(r.Context(), req.NationalID, amount)
	})
}

// =============================================================================
// ACCOUNT QUERIES
// =============================================================================

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BalanceDTO{
		AccountNumber: h.org.Identity().AccountNumber,
		Balance:       h.org.AccountBalance().String(),
	})
}

func (h *Handler) GetMovements(w http.ResponseWriter, r *http.Request) {
	month, year := periodParams(r)
	var dtos []MovementDTO
	for rec := range h.org.Movements(month, year) {
		dtos = append(dtos, toMovementDTO(rec))
	}
	if dtos == nil {
		dtos = []MovementDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	month, year := periodParams(r)
	summary := h.org.MovementsSummary(month, year)
	writeJSON(w, http.StatusOK, SummaryDTO{
		Credits: summary.Credits.String(),
		Debits:  summary.Debits.String(),
		Net:     summary.Net.String(),
	})
}

// periodParams reads optional ?month= and ?year= filters; zero means
// no filter on that component.
func periodParams(r *http.Request) (int, int) {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	return month, year
}

// =============================================================================
// HELPERS
// =============================================================================

// applied runs a facade operation and maps its (applied, err) result to
// a response per the status code convention.
func (h *Handler) applied(w http.ResponseWriter, r *http.Request, okStatus int, op func() (bool, error)) {
	ok, err := op()
	if err != nil {
		h.logger.Error("operation failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "operation failed", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, AppliedDTO{Applied: false})
		return
	}
	writeJSON(w, okStatus, AppliedDTO{Applied: true})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
