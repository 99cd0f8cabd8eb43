package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"animalitos/domain/entities"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxBodyBytes     = 1 << 20
)

// LedgerAPI is the part of the ledger facade served over HTTP
type LedgerAPI interface {
	ListPots(ctx context.Context) ([]*entities.Pot, error)
	GetPot(ctx context.Context, name string) (*entities.Pot, error)
	ConfigurePots(ctx context.Context, configs []entities.PotConfig) ([]*entities.Pot, error)
	PlaceBet(ctx context.Context, intake entities.BetIntake) (*entities.DistributionResult, error)
	GetDistribution(ctx context.Context, betID string) (*entities.DistributionResult, error)
	Transfer(ctx context.Context, req entities.TransferRequest) (*entities.TransferResult, error)
	Withdraw(ctx context.Context, req entities.WithdrawalRequest) (*entities.WithdrawalResult, error)
	ListTransfers(ctx context.Context, limit int) ([]*entities.Transfer, error)
	ListWithdrawals(ctx context.Context, limit int) ([]*entities.Withdrawal, error)
	TriggerDraw(ctx context.Context, trigger entities.DrawTrigger) (*entities.DrawOutcome, error)
	Settle(ctx context.Context, drawID string) (*entities.SettlementResult, error)
	LotterySummary(ctx context.Context, lotteryID string) (*entities.LotterySummary, error)
	Reconcile(ctx context.Context) (*entities.ReconciliationReport, error)
	Sync(ctx context.Context) (*entities.SyncReport, error)
	DiscardConflict(ctx context.Context, seq int64) error
}

// HandlerProvider wraps the ledger and exposes HTTP handlers.
type HandlerProvider struct {
	ledger LedgerAPI
}

// NewHandler returns a new Handler provider.
func NewHandler(ledger LedgerAPI) *HandlerProvider {
	return &HandlerProvider{ledger: ledger}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body, rejecting unknown fields
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, entities.NewValidationError("limit must be a positive integer")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}

// created is 201 for a new record and 200 for a replay of an existing one
func created(replayed bool) int {
	if replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

// --- Pots ---

// ListPots handles GET /pots
func (h *HandlerProvider) ListPots(w http.ResponseWriter, r *http.Request) {
	pots, err := h.ledger.ListPots(r.Context())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pots": pots})
}

// GetPot handles GET /pots/{name}
func (h *HandlerProvider) GetPot(w http.ResponseWriter, r *http.Request) {
	pot, err := h.ledger.GetPot(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pot)
}

type configurePotsRequest struct {
	Pots []entities.PotConfig `json:"pots"`
}

// ConfigurePots handles PUT /pots
func (h *HandlerProvider) ConfigurePots(w http.ResponseWriter, r *http.Request) {
	var req configurePotsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pots, err := h.ledger.ConfigurePots(r.Context(), req.Pots)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pots": pots})
}

// --- Transfers and withdrawals ---

// Transfer handles POST /transfers
func (h *HandlerProvider) Transfer(w http.ResponseWriter, r *http.Request) {
	var req entities.TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.ledger.Transfer(r.Context(), req)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, created(result.Replayed), result)
}

// ListTransfers handles GET /transfers?limit=N
func (h *HandlerProvider) ListTransfers(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	transfers, err := h.ledger.ListTransfers(r.Context(), limit)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transfers": transfers})
}

// Withdraw handles POST /withdrawals
func (h *HandlerProvider) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req entities.WithdrawalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.ledger.Withdraw(r.Context(), req)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, created(result.Replayed), result)
}

// ListWithdrawals handles GET /withdrawals?limit=N
func (h *HandlerProvider) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	withdrawals, err := h.ledger.ListWithdrawals(r.Context(), limit)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"withdrawals": withdrawals})
}

// --- Bets and draws ---

// PlaceBet handles POST /bets
func (h *HandlerProvider) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var intake entities.BetIntake
	if !decodeBody(w, r, &intake) {
		return
	}

	result, err := h.ledger.PlaceBet(r.Context(), intake)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, created(result.Replayed), result)
}

// GetDistribution handles GET /bets/{id}/distribution
func (h *HandlerProvider) GetDistribution(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.GetDistribution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// TriggerDraw handles POST /draws
func (h *HandlerProvider) TriggerDraw(w http.ResponseWriter, r *http.Request) {
	var trigger entities.DrawTrigger
	if !decodeBody(w, r, &trigger) {
		return
	}

	outcome, err := h.ledger.TriggerDraw(r.Context(), trigger)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, created(outcome.Result.Replayed), outcome)
}

// SettleDraw handles POST /draws/{id}/settle, used to retry a failed draw
func (h *HandlerProvider) SettleDraw(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.Settle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LotterySummary handles GET /lotteries/{id}
func (h *HandlerProvider) LotterySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.LotterySummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Reconciliation and sync ---

// Reconcile handles GET /reconcile. Drift is part of the report, not an error status.
func (h *HandlerProvider) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Reconcile(r.Context())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Sync handles POST /sync
func (h *HandlerProvider) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Sync(r.Context())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DiscardConflict handles POST /journal/{seq}/discard
func (h *HandlerProvider) DiscardConflict(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseInt(chi.URLParam(r, "seq"), 10, 64)
	if err != nil || seq <= 0 {
		writeError(w, http.StatusBadRequest, "invalid journal sequence")
		return
	}
	if err := h.ledger.DiscardConflict(r.Context(), seq); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"discarded": seq})
}
