package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"stockwatch/internal/database"
	"stockwatch/internal/models"
	"stockwatch/internal/monitor"
	"stockwatch/internal/quote"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db        *database.DB
	quotes    *quote.Service
	scheduler *monitor.Scheduler
	logger    *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, quotes *quote.Service, scheduler *monitor.Scheduler, logger *slog.Logger) *Handler {
	return &Handler{
		db:        db,
		quotes:    quotes,
		scheduler: scheduler,
		logger:    logger,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CreateUser handles POST /api/v1/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	user := &models.User{
		Email:          req.Email,
		Name:           req.Name,
		EmailReminders: true,
		EmailSummary:   true,
	}
	if err := h.db.CreateUser(user); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /api/v1/users/{userID}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	user, err := h.db.GetUserByID(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateContact handles PUT /api/v1/users/{userID}/contact
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req struct {
		PhoneNumber    string `json:"phone_number"`
		Carrier        string `json:"carrier"`
		Name           string `json:"name"`
		EmailReminders *bool  `json:"email_reminders"`
		EmailSummary   *bool  `json:"email_summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	emailReminders := true
	if req.EmailReminders != nil {
		emailReminders = *req.EmailReminders
	}
	emailSummary := true
	if req.EmailSummary != nil {
		emailSummary = *req.EmailSummary
	}

	err := h.db.UpdateContact(userID, req.PhoneNumber, req.Carrier, req.Name, emailReminders, emailSummary)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	user, err := h.db.GetUserByID(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/{userID}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	if err := h.db.DeleteUser(userID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWatches handles GET /api/v1/users/{userID}/watches
func (h *Handler) ListWatches(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	watches, err := h.db.ListUserWatches(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if watches == nil {
		watches = []*models.WatchWithQuote{}
	}

	respondJSON(w, http.StatusOK, watches)
}

type watchRequest struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Direction string `json:"direction"`
}

func (req *watchRequest) validate() (decimal.Decimal, error) {
	if req.Symbol == "" {
		return decimal.Zero, errors.New("symbol is required")
	}
	if req.Direction != models.DirectionAbove && req.Direction != models.DirectionBelow {
		return decimal.Zero, errors.New("direction must be 'above' or 'below'")
	}
	threshold, err := decimal.NewFromString(req.Threshold)
	if err != nil || !threshold.IsPositive() {
		return decimal.Zero, errors.New("threshold must be a positive number")
	}
	return threshold, nil
}

// CreateWatch handles POST /api/v1/users/{userID}/watches
func (h *Handler) CreateWatch(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	threshold, err := req.validate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	watch := &models.Watch{
		UserID:    userID,
		Symbol:    strings.ToUpper(req.Symbol),
		Name:      req.Name,
		Threshold: threshold,
		Direction: req.Direction,
	}
	if err := h.db.CreateWatch(watch); err != nil {
		if errors.Is(err, database.ErrDuplicateWatch) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, watch)
}

// UpdateWatch handles PATCH /api/v1/users/{userID}/watches/{watchID}
func (h *Handler) UpdateWatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, watchID := vars["userID"], vars["watchID"]

	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	current, err := h.db.GetWatch(watchID)
	if err != nil || current.UserID != userID {
		http.Error(w, "watch not found", http.StatusNotFound)
		return
	}

	name := current.Name
	if req.Name != "" {
		name = req.Name
	}
	threshold := current.Threshold
	if req.Threshold != "" {
		threshold, err = decimal.NewFromString(req.Threshold)
		if err != nil || !threshold.IsPositive() {
			http.Error(w, "threshold must be a positive number", http.StatusBadRequest)
			return
		}
	}
	direction := current.Direction
	if req.Direction != "" {
		if req.Direction != models.DirectionAbove && req.Direction != models.DirectionBelow {
			http.Error(w, "direction must be 'above' or 'below'", http.StatusBadRequest)
			return
		}
		direction = req.Direction
	}

	if err := h.db.UpdateWatch(userID, watchID, name, threshold, direction); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updated, err := h.db.GetWatch(watchID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteWatch handles DELETE /api/v1/users/{userID}/watches/{watchID}.
// Watches are soft-deleted so alert history keeps its references.
func (h *Handler) DeleteWatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.db.DeactivateWatch(vars["userID"], vars["watchID"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAlerts handles GET /api/v1/users/{userID}/alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	alerts, err := h.db.ListUserAlerts(userID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []*models.AlertRecord{}
	}

	respondJSON(w, http.StatusOK, alerts)
}

// GetQuote handles GET /api/v1/quotes/{symbol}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	q, err := h.quotes.GetPrice(r.Context(), symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, q)
}

// TriggerMonitor handles POST /api/v1/monitor: runs one monitoring cycle
// and reports whether it completed
func (h *Handler) TriggerMonitor(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("manual monitor trigger")

	err := h.scheduler.RunOnce(r.Context())
	if errors.Is(err, monitor.ErrCycleInProgress) {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"message": "monitoring cycle already in progress",
		})
		return
	}
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "stock monitoring failed",
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "stock monitoring completed successfully",
		"timestamp": time.Now().UTC(),
	})
}

// MonitorHealth handles GET /api/v1/monitor: basic counts read straight
// from the registry
func (h *Handler) MonitorHealth(w http.ResponseWriter, r *http.Request) {
	userCount, err := h.db.CountUsers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	watchCount, err := h.db.CountActiveWatches()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats": map[string]int{
			"total_users":    userCount,
			"active_watches": watchCount,
		},
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
