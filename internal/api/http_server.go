package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotseat/internal/config"
	"hotseat/internal/database"
	"hotseat/internal/domain"
	"hotseat/internal/metrics"
	"hotseat/internal/models"
	"hotseat/internal/scheduling"
)

// HTTPServer exposes the booking engine over a small JSON API.
type HTTPServer struct {
	cfg           config.APIConfig
	scheduler     *scheduling.Scheduler
	availability  *scheduling.AvailabilityCalculator
	appointments  domain.AppointmentRepository
	notifications domain.NotificationRepository
	users         domain.UserRepository
	logger        *zerolog.Logger
	server        *http.Server
	auth          *HTTPAuth
}

func NewHTTPServer(
	cfg config.APIConfig,
	scheduler *scheduling.Scheduler,
	availability *scheduling.AvailabilityCalculator,
	appointments domain.AppointmentRepository,
	notifications domain.NotificationRepository,
	users domain.UserRepository,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:           cfg,
		scheduler:     scheduler,
		availability:  availability,
		appointments:  appointments,
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/appointments", srv.handleAppointments)
	mux.HandleFunc("/api/v1/providers/", srv.handleProviderAvailability)
	mux.HandleFunc("/api/v1/notifications", srv.handleNotifications)
	mux.HandleFunc("/api/v1/notifications/", srv.handleNotificationRead)
	mux.HandleFunc("/api/v1/users", srv.handleUsers)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler, used directly in tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

type createAppointmentRequest struct {
	ProviderID string `json:"provider_id"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date"`
	Type       string `json:"type"`
}

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createAppointment(w, r)
	case http.MethodGet:
		s.listAppointments(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createAppointment(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var body createAppointmentRequest
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ProviderID == "" || body.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "provider_id and customer_id are required")
		return
	}

	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected RFC3339")
		return
	}

	appointment, err := s.scheduler.CreateAppointment(r.Context(), body.ProviderID, body.CustomerID, date, body.Type)
	if err != nil {
		s.writeSchedulingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

func (s *HTTPServer) listAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := s.appointments.GetAppointments(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if appointments == nil {
		appointments = []*models.Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

// handleProviderAvailability serves
// /api/v1/providers/{id}/availability/month?year=&month= and
// /api/v1/providers/{id}/availability/day?year=&month=&day=
func (s *HTTPServer) handleProviderAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/providers/")
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] != "availability" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	providerID := parts[0]

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}
	month := time.Month(monthNum)

	switch parts[2] {
	case "month":
		slots, err := s.availability.MonthAvailability(r.Context(), providerID, year, month)
		if err != nil {
			s.writeSchedulingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"days": slots})

	case "day":
		day, err := strconv.Atoi(r.URL.Query().Get("day"))
		if err != nil || day < 1 || day > 31 {
			writeError(w, http.StatusBadRequest, "day must be between 1 and 31")
			return
		}
		slots, err := s.availability.DayAvailability(r.Context(), providerID, year, month, day)
		if err != nil {
			s.writeSchedulingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"hours": slots})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	recipientID := strings.TrimSpace(r.URL.Query().Get("recipient_id"))
	if recipientID == "" {
		writeError(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	notifications, err := s.notifications.GetNotificationsByRecipient(r.Context(), recipientID, page)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications, "page": page})
}

// handleNotificationRead serves POST /api/v1/notifications/{id}/read.
func (s *HTTPServer) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "read" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	notification, err := s.notifications.MarkNotificationRead(r.Context(), parts[0])
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		var body createUserRequest
		if err := decoder.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" {
			writeError(w, http.StatusBadRequest, "name and email are required")
			return
		}

		user := &models.User{ID: uuid.NewString(), Name: body.Name, Email: body.Email}
		if err := s.users.CreateUser(r.Context(), user); err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				writeError(w, http.StatusConflict, "email already registered")
				return
			}
			s.internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)

	case http.MethodGet:
		users, err := s.users.GetAllUsers(r.Context())
		if err != nil {
			s.internalError(w, err)
			return
		}
		if users == nil {
			users = []*models.User{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeSchedulingError maps engine errors onto HTTP status codes.
func (s *HTTPServer) writeSchedulingError(w http.ResponseWriter, err error) {
	var validationErr *scheduling.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation_failed",
			"reason": validationErr.Reason,
		})
	case errors.Is(err, database.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "conflict",
			"reason": "slot_taken",
		})
	case errors.Is(err, scheduling.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider not found")
	default:
		s.internalError(w, err)
	}
}

func (s *HTTPServer) internalError(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel collapses path parameters so metric cardinality stays bounded.
func endpointLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/providers/"):
		if strings.HasSuffix(path, "/availability/month") {
			return "/api/v1/providers/:id/availability/month"
		}
		if strings.HasSuffix(path, "/availability/day") {
			return "/api/v1/providers/:id/availability/day"
		}
		return "/api/v1/providers/:id"
	case strings.HasPrefix(path, "/api/v1/notifications/"):
		return "/api/v1/notifications/:id/read"
	default:
		return path
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
