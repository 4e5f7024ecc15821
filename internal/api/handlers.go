package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adeyemio/coopledger/internal/auth"
	"github.com/adeyemio/coopledger/internal/middleware"
	"github.com/adeyemio/coopledger/internal/models"
)

// ── Auth ──

type adminLoginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.admin.Authenticate(req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.jwt.Generate("", auth.RoleAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ── Members ──

type registerMemberRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Type       string `json:"member_type"`
	ReferrerID string `json:"referrer_id"`
}

func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member := &models.Member{
		Name:       req.Name,
		Email:      req.Email,
		Type:       models.MemberType(req.Type),
		Status:     models.RegistrationApproved,
		ReferrerID: req.ReferrerID,
	}
	if err := s.members.Register(r.Context(), member); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// selfOrAdmin refuses access to another member's records unless the
// caller holds the admin role.
func selfOrAdmin(w http.ResponseWriter, r *http.Request, memberID string) bool {
	if middleware.GetRole(r.Context()) == auth.RoleAdmin {
		return true
	}
	if middleware.GetMemberID(r.Context()) == memberID {
		return true
	}
	writeError(w, http.StatusForbidden, "not your record")
	return false
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	if !selfOrAdmin(w, r, memberID) {
		return
	}
	balance, err := s.members.Balance(r.Context(), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleAvailableBalance(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	if !selfOrAdmin(w, r, memberID) {
		return
	}
	bucket := models.Bucket(chi.URLParam(r, "bucket"))
	available, err := s.members.AvailableBalance(r.Context(), memberID, bucket)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member_id": memberID,
		"bucket":    bucket,
		"available": available,
	})
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	if !selfOrAdmin(w, r, memberID) {
		return
	}
	chain, err := s.members.Ancestors(r.Context(), memberID, 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chain)
}

// ── Contributions ──

type submitContributionRequest struct {
	MemberID   string `json:"member_id"`
	Amount     int64  `json:"amount"`
	Breakdown  string `json:"breakdown_type"`
	Month      string `json:"month"`
	ReceiptRef string `json:"receipt_ref"`
}

func (s *Server) handleSubmitContribution(w http.ResponseWriter, r *http.Request) {
	var req submitContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MemberID == "" {
		req.MemberID = middleware.GetMemberID(r.Context())
	}
	if !selfOrAdmin(w, r, req.MemberID) {
		return
	}

	c, err := s.contributions.Submit(r.Context(), req.MemberID, req.Amount,
		models.BreakdownType(req.Breakdown), req.Month, req.ReceiptRef)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleApproveContribution(w http.ResponseWriter, r *http.Request) {
	c, err := s.contributions.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ── Support fees & bonuses ──

type recordFeeRequest struct {
	MemberID   string `json:"member_id"`
	Month      string `json:"month"`
	ReceiptRef string `json:"receipt_ref"`
}

func (s *Server) handleRecordFee(w http.ResponseWriter, r *http.Request) {
	var req recordFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MemberID == "" {
		req.MemberID = middleware.GetMemberID(r.Context())
	}
	if !selfOrAdmin(w, r, req.MemberID) {
		return
	}

	p, err := s.bonuses.RecordPayment(r.Context(), req.MemberID, req.Month, req.ReceiptRef)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleApproveFee(w http.ResponseWriter, r *http.Request) {
	batch, err := s.bonuses.ApprovePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleGetBonusDistribution(w http.ResponseWriter, r *http.Request) {
	batch, err := s.bonuses.GetDistribution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// ── Dividends ──

type runDividendRequest struct {
	Profit int64 `json:"profit"`
}

func (s *Server) handleRunDividend(w http.ResponseWriter, r *http.Request) {
	var req runDividendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch, err := s.dividends.Run(r.Context(), req.Profit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

func (s *Server) handleGetDividend(w http.ResponseWriter, r *http.Request) {
	batch, err := s.dividends.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleDeleteDividend(w http.ResponseWriter, r *http.Request) {
	if err := s.dividends.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Withdrawals ──

type requestWithdrawalRequest struct {
	MemberID      string `json:"member_id"`
	Bucket        string `json:"bucket"`
	Amount        int64  `json:"amount"`
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

func (s *Server) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req requestWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MemberID == "" {
		req.MemberID = middleware.GetMemberID(r.Context())
	}
	if !selfOrAdmin(w, r, req.MemberID) {
		return
	}

	wr, err := s.withdrawals.Request(r.Context(), req.MemberID,
		models.Bucket(req.Bucket), req.Amount, models.BankDetails{
			BankName:      req.BankName,
			AccountName:   req.AccountName,
			AccountNumber: req.AccountNumber,
		})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wr)
}

func (s *Server) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	if !selfOrAdmin(w, r, memberID) {
		return
	}
	list, err := s.withdrawals.ListByMember(r.Context(), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	wr, err := s.withdrawals.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wr)
}

func (s *Server) handleCompleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	wr, err := s.withdrawals.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wr)
}

func (s *Server) handleRejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	wr, err := s.withdrawals.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wr)
}

// ── Settlement ──

func (s *Server) handleSettleMonth(w http.ResponseWriter, r *http.Request) {
	settlement, err := s.settlements.SettleMonth(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

// ── Helpers ──

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": msg},
	})
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrBelowMinimumCapital),
		errors.Is(err, models.ErrBelowMinimumThreshold),
		errors.Is(err, models.ErrIneligibleMember),
		errors.Is(err, models.ErrNoEligibleMembers):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrMonthAlreadySettled),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrDuplicateDistribution),
		errors.Is(err, models.ErrTreeFull):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
