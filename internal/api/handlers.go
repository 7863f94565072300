package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/custodia-io/vault-ledger/internal/observability/metrics"
	"github.com/custodia-io/vault-ledger/internal/vault"
)

type errorResponse struct {
	Error string `json:"error"`
}

type priceResponse struct {
	Price     string    `json:"price"`
	Decimals  uint8     `json:"decimals"`
	UpdatedAt time.Time `json:"updated_at"`
}

type balanceResponse struct {
	Identity string `json:"identity"`
	Asset    string `json:"asset"`
	Balance  string `json:"balance"`
}

type mutationRequest struct {
	Asset          string `json:"asset"`
	Amount         string `json:"amount"`
	AttachedNative string `json:"attached_native,omitempty"`
	Destination    string `json:"destination,omitempty"`
}

type mutationResponse struct {
	EventID string `json:"event_id"`
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
	Value   string `json:"value"`
	Balance string `json:"balance"`
	Total   string `json:"total"`
}

type adminRequest struct {
	Asset      string `json:"asset,omitempty"`
	Capability string `json:"capability,omitempty"`
	Identity   string `json:"identity,omitempty"`
	Cap        string `json:"cap,omitempty"`
	Limit      string `json:"limit,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
}

func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Db().Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getPrice(w http.ResponseWriter, r *http.Request) {
	quote, err := s.svc.Vault().NativePrice(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{
		Price:     quote.Price.String(),
		Decimals:  quote.Decimals,
		UpdatedAt: quote.UpdatedAt,
	})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	asset := chi.URLParam(r, "asset")
	balance := s.svc.Vault().Balance(identity, asset)
	writeJSON(w, http.StatusOK, balanceResponse{
		Identity: identity,
		Asset:    asset,
		Balance:  balance.String(),
	})
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	events, err := s.svc.Db().GetVaultEventsByIdentity(r.Context(), identity, 100)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req mutationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseAmount(w, r, "amount", req.Amount)
	if !ok {
		return
	}
	attached := math.ZeroInt()
	if req.AttachedNative != "" {
		if attached, ok = parseAmount(w, r, "attached_native", req.AttachedNative); !ok {
			return
		}
	}

	event, err := s.svc.Vault().Deposit(r.Context(), caller, req.Asset, amount, attached)
	if err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutationResponseFromEvent(event))
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req mutationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseAmount(w, r, "amount", req.Amount)
	if !ok {
		return
	}

	event, err := s.svc.Vault().Withdraw(r.Context(), caller, req.Asset, amount)
	if err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutationResponseFromEvent(event))
}

func (s *Server) emergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req mutationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseAmount(w, r, "amount", req.Amount)
	if !ok {
		return
	}

	err := s.svc.Vault().EmergencyWithdraw(r.Context(), caller, req.Asset, amount, req.Destination)
	if err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "swept"})
}

func (s *Server) registerAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := s.svc.Vault().RegisterAsset(r.Context(), caller, req.Asset)
	if err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"asset":  event.Asset,
		"symbol": event.Symbol,
	})
}

func (s *Server) grantRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.svc.Vault().Grant(r.Context(), caller, vault.Capability(req.Capability), req.Identity)
	if err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

func (s *Server) updateGlobalCap(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	newCap, ok := parseAmount(w, r, "cap", req.Cap)
	if !ok {
		return
	}

	if err := s.svc.Vault().UpdateGlobalCap(r.Context(), caller, newCap); err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cap": newCap.String()})
}

func (s *Server) updateWithdrawLimit(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	newLimit, ok := parseAmount(w, r, "limit", req.Limit)
	if !ok {
		return
	}

	if err := s.svc.Vault().UpdateWithdrawLimit(r.Context(), caller, newLimit); err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"limit": newLimit.String()})
}

func (s *Server) updatePriceSource(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.svc.SetOraclePriceSource(r.Context(), caller, req.Endpoint); err != nil {
		writeVaultError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"endpoint": req.Endpoint})
}

func mutationResponseFromEvent(event vault.Event) mutationResponse {
	return mutationResponse{
		EventID: event.ID,
		Asset:   event.Asset,
		Amount:  event.Amount.String(),
		Value:   event.Value.String(),
		Balance: event.Balance.String(),
		Total:   event.Total.String(),
	}
}

func callerIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := r.Header.Get(identityHeader)
	if caller == "" {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("missing %s header", identityHeader))
		return "", false
	}
	return caller, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func parseAmount(w http.ResponseWriter, r *http.Request, field, raw string) (math.Int, bool) {
	amount, ok := math.NewIntFromString(raw)
	if !ok {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("%s must be an integer, got %q", field, raw))
		return math.Int{}, false
	}
	return amount, true
}

// writeVaultError maps the vault error taxonomy onto HTTP status codes:
// validation 400, authorization 403, capacity 409, oracle 503,
// re-entry 429.
func writeVaultError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var reason string
	switch {
	case errors.Is(err, vault.ErrZeroAmount),
		errors.Is(err, vault.ErrAssetNotSupported),
		errors.Is(err, vault.ErrAlreadySupported),
		errors.Is(err, vault.ErrNativeAssetReserved),
		errors.Is(err, vault.ErrUnknownCapability),
		errors.Is(err, vault.ErrInvalidAddress),
		errors.Is(err, vault.ErrNativeValueMismatch),
		errors.Is(err, vault.ErrValueOverflow),
		errors.Is(err, vault.ErrDecimalsOutOfRange):
		status, reason = http.StatusBadRequest, "validation"
	case errors.Is(err, vault.ErrUnauthorized):
		status, reason = http.StatusForbidden, "unauthorized"
	case errors.Is(err, vault.ErrCapExceeded),
		errors.Is(err, vault.ErrInsufficientFunds),
		vault.IsInsufficientBalanceError(err),
		vault.IsWithdrawLimitError(err):
		status, reason = http.StatusConflict, "capacity"
	case errors.Is(err, vault.ErrOracleInvalidPrice), errors.Is(err, vault.ErrOracleStale):
		status, reason = http.StatusServiceUnavailable, "oracle"
	case errors.Is(err, vault.ErrReentrancy):
		status, reason = http.StatusTooManyRequests, "reentrancy"
	default:
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	metrics.IncRejectedOperation(r.URL.Path, reason)
	writeError(w, r, status, err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}
