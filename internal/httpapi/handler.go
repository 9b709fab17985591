package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/railmiles/rewards-service/internal/rider"
	sharedauth "github.com/railmiles/rewards-service/internal/shared/auth"
	apierrors "github.com/railmiles/rewards-service/internal/shared/errors"
	"github.com/railmiles/rewards-service/internal/shared/logging"
)

const (
	serviceTimeout  = 10 * time.Second
	maxPayloadBytes = 64 << 10
)

type handler struct {
	service *rider.Service
	logger  *slog.Logger
}

// RegisterRoutes mounts the rider, journey and rewards endpoints on r.
func RegisterRoutes(r chi.Router, svc *rider.Service, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{service: svc, logger: logger}

	r.Route("/v1/riders", func(r chi.Router) {
		r.Post("/", h.signUp)
		r.Get("/me", h.getProfile)
	})
	r.Route("/v1/journeys", func(r chi.Router) {
		r.Get("/", h.listJourneys)
		r.Post("/", h.logJourney)
		r.Get("/calendar", h.calendar)
	})
	r.Route("/v1/rewards", func(r chi.Router) {
		r.Get("/me", h.dashboard)
		r.Get("/catalog", h.catalog)
	})
	r.Get("/v1/stations", h.listStations)
	r.Get("/v1/badges", h.listBadges)
	r.Get("/v1/challenges", h.listChallenges)
}

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	userID := sharedauth.UserID(r)
	if userID == "" {
		writeError(w, r, apierrors.CodeUnauthorized, "missing user ID")
		return
	}

	var req rider.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, apierrors.CodeBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	profile, err := h.service.SignUp(ctx, userID, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	profile, err := h.service.GetProfile(ctx, sharedauth.UserID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *handler) logJourney(w http.ResponseWriter, r *http.Request) {
	userID := sharedauth.UserID(r)
	if userID == "" {
		writeError(w, r, apierrors.CodeUnauthorized, "missing user ID")
		return
	}

	var req rider.JourneyInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, apierrors.CodeBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	result, err := h.service.LogJourney(ctx, userID, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *handler) listJourneys(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthQuery(r)
	if err != nil {
		writeError(w, r, apierrors.CodeBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	journeys, err := h.service.ListJourneys(ctx, sharedauth.UserID(r), year, month)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       journeys,
		"total_items": len(journeys),
	})
}

func (h *handler) calendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthQuery(r)
	if err != nil {
		writeError(w, r, apierrors.CodeBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	cal, err := h.service.Calendar(ctx, sharedauth.UserID(r), year, month)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	d, err := h.service.Dashboard(ctx, sharedauth.UserID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) catalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	offers, err := h.service.Catalog(ctx, sharedauth.UserID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": offers})
}

func (h *handler) listStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.service.ListStations(r.Context())})
}

func (h *handler) listBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.service.ListBadges(r.Context())})
}

func (h *handler) listChallenges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.service.ListChallenges(r.Context())})
}

func (h *handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rider.ErrMissingUserID):
		writeError(w, r, apierrors.CodeUnauthorized, "missing user ID")
	case errors.Is(err, rider.ErrNotFound):
		writeError(w, r, apierrors.CodeNotFound, "rider not found")
	case errors.Is(err, rider.ErrConflict):
		writeError(w, r, apierrors.CodeConflict, "rider already exists")
	case errors.Is(err, rider.ErrInvalidInput):
		msg := strings.TrimSpace(err.Error())
		if i := strings.Index(msg, ":"); i >= 0 {
			msg = strings.TrimSpace(msg[i+1:])
		}
		writeError(w, r, apierrors.CodeBadRequest, msg)
	default:
		logging.WithRequestID(r.Context(), h.logger).ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, r, apierrors.CodeInternal, "internal server error")
	}
}

func parseMonthQuery(r *http.Request) (int, time.Month, error) {
	var (
		year  int
		month time.Month
	)
	if ms := r.URL.Query().Get("month"); ms != "" {
		m, err := strconv.Atoi(ms)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("invalid month (1-12)")
		}
		month = time.Month(m)
	}
	if ys := r.URL.Query().Get("year"); ys != "" {
		y, err := strconv.Atoi(ys)
		if err != nil || y < 1970 || y > 2100 {
			return 0, 0, errors.New("invalid year (1970-2100)")
		}
		year = y
	}
	return year, month, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, apierrors.ToStatusCode(code), apierrors.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
