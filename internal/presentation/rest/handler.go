package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/application/usecase"
	"github.com/saaayf/smartmedishop/internal/domain/port"
)

// ServiceName is reported by the API health endpoint.
const ServiceName = "SmartMediShop AI Fraud Detection"

const maxBodyBytes = 1 << 20

// Handler serves the fraud detection REST API.
type Handler struct {
	analyzeTransaction  *usecase.AnalyzeTransaction
	getAnalysis         *usecase.GetAnalysis
	listTransactions    *usecase.ListTransactions
	listFraudAlerts     *usecase.ListFraudAlerts
	updateAlertStatus   *usecase.UpdateAlertStatus
	simulateTransaction *usecase.SimulateTransaction
	logger              *slog.Logger
	now                 func() time.Time
}

// NewHandler creates the REST handler.
func NewHandler(
	analyzeTransaction *usecase.AnalyzeTransaction,
	getAnalysis *usecase.GetAnalysis,
	listTransactions *usecase.ListTransactions,
	listFraudAlerts *usecase.ListFraudAlerts,
	updateAlertStatus *usecase.UpdateAlertStatus,
	simulateTransaction *usecase.SimulateTransaction,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		analyzeTransaction:  analyzeTransaction,
		getAnalysis:         getAnalysis,
		listTransactions:    listTransactions,
		listFraudAlerts:     listFraudAlerts,
		updateAlertStatus:   updateAlertStatus,
		simulateTransaction: simulateTransaction,
		logger:              logger,
		now:                 time.Now,
	}
}

// RegisterRoutes registers the API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/analyze-transaction", h.AnalyzeTransaction)
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", h.GetTransaction)
	mux.HandleFunc("GET /api/fraud-alerts", h.ListFraudAlerts)
	mux.HandleFunc("PATCH /api/fraud-alerts/{id}", h.UpdateFraudAlert)
	mux.HandleFunc("POST /api/simulate-transaction", h.SimulateTransaction)
}

type apiHealthResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Service   string    `json:"service"`
}

// Health reports that the API is up.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, apiHealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: h.now().UTC(),
	})
}

// AnalyzeTransaction scores a submitted transaction.
func (h *Handler) AnalyzeTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeTransactionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	resp, err := h.analyzeTransaction.Execute(r.Context(), req)
	if err != nil {
		h.handleError(w, r, "analyze transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTransactions returns the analysis history.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	resp, err := h.listTransactions.Execute(r.Context(), dto.ListTransactionsRequest{Limit: limit})
	if err != nil {
		h.handleError(w, r, "list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type transactionResponse struct {
	Transaction dto.TransactionDetail `json:"transaction"`
	Success     bool                  `json:"success"`
}

// GetTransaction returns one stored analysis.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	detail, err := h.getAnalysis.Execute(r.Context(), dto.GetAnalysisRequest{TransactionID: r.PathValue("id")})
	if err != nil {
		h.handleError(w, r, "get transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{Success: true, Transaction: detail})
}

// ListFraudAlerts returns the alert queue.
func (h *Handler) ListFraudAlerts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	resp, err := h.listFraudAlerts.Execute(r.Context(), dto.ListAlertsRequest{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
	})
	if err != nil {
		h.handleError(w, r, "list fraud alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type alertResponse struct {
	Alert   dto.AlertResponse `json:"alert"`
	Success bool              `json:"success"`
}

// UpdateFraudAlert changes an alert's review status.
func (h *Handler) UpdateFraudAlert(w http.ResponseWriter, r *http.Request) {
	alertID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	var req dto.UpdateAlertStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	req.AlertID = alertID

	resp, err := h.updateAlertStatus.Execute(r.Context(), req)
	if err != nil {
		h.handleError(w, r, "update fraud alert", err)
		return
	}
	writeJSON(w, http.StatusOK, alertResponse{Success: true, Alert: resp})
}

// SimulateTransaction generates and scores a random transaction.
func (h *Handler) SimulateTransaction(w http.ResponseWriter, r *http.Request) {
	resp, err := h.simulateTransaction.Execute(r.Context())
	if err != nil {
		h.handleError(w, r, "simulate transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, port.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, port.ErrConflict):
		writeError(w, http.StatusConflict, "alert was updated by another request")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("operation", op),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return 0, false
	}
	return limit, true
}

type errorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
