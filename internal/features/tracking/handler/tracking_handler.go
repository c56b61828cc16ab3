package handler

import (
	"errors"
	"net/http"
	"time"

	"riderpro/internal/core/logger"
	"riderpro/internal/features/tracking/domain"
	"riderpro/internal/features/tracking/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TrackingHandler handles HTTP requests for route sessions and coordinates.
type TrackingHandler struct {
	sessions ports.SessionManager
	ingest   ports.CoordinateIngestor
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(sessions ports.SessionManager, ingest ports.CoordinateIngestor) *TrackingHandler {
	return &TrackingHandler{
		sessions: sessions,
		ingest:   ingest,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// StartSessionRequest is the body for opening a tracking session.
type StartSessionRequest struct {
	RiderID string  `json:"rider_id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// StopSessionRequest is the body for completing a session.
type StopSessionRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SessionTotals is the frozen aggregate block returned on completion.
type SessionTotals struct {
	DistanceM     float64 `json:"distance_m"`
	DistanceKm    float64 `json:"distance_km"`
	ActiveSeconds int64   `json:"active_seconds"`
	AvgSpeedKmh   float64 `json:"avg_speed_kmh"`
}

// SessionResponse is the lifecycle response for start/pause/resume/stop.
type SessionResponse struct {
	SessionID string         `json:"session_id"`
	Status    string         `json:"status"`
	Totals    *SessionTotals `json:"totals,omitempty"`
}

// CoordinateRequest is one uploaded location sample. The timestamp is the
// client clock reading, RFC3339.
type CoordinateRequest struct {
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Timestamp      string   `json:"timestamp"`
	AccuracyM      *float64 `json:"accuracy_m,omitempty"`
	SpeedKmh       *float64 `json:"speed_kmh,omitempty"`
	EventType      string   `json:"event_type,omitempty"`
	ShipmentID     string   `json:"shipment_id,omitempty"`
	BatteryLevel   *int     `json:"battery_level,omitempty"`
	Charging       bool     `json:"charging,omitempty"`
	NetworkType    string   `json:"network_type,omitempty"`
	SignalStrength *int     `json:"signal_strength,omitempty"`
}

// BatchRequest is an offline backlog upload for one session.
type BatchRequest struct {
	Samples []CoordinateRequest `json:"samples"`
}

// CoordinateResponse is the per-upload verdict for a single sample.
type CoordinateResponse struct {
	Accepted  bool   `json:"accepted"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// toSample maps a wire sample onto the domain type. An unparsable timestamp
// is a per-sample validation failure, never a batch abort.
func (r CoordinateRequest) toSample() (domain.TrackingSample, *domain.ValidationError) {
	recordedAt, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return domain.TrackingSample{}, &domain.ValidationError{Field: "timestamp", Reason: "unparsable"}
	}
	return domain.TrackingSample{
		Lat:            r.Lat,
		Lng:            r.Lng,
		RecordedAt:     recordedAt,
		AccuracyM:      r.AccuracyM,
		SpeedKmh:       r.SpeedKmh,
		EventType:      domain.EventType(r.EventType),
		ShipmentID:     r.ShipmentID,
		BatteryLevel:   r.BatteryLevel,
		Charging:       r.Charging,
		NetworkType:    r.NetworkType,
		SignalStrength: r.SignalStrength,
	}, nil
}

// StartSession godoc
// @Summary Start a tracking session
// @Description Opens a new active session for a rider. A rider may hold at most one open session.
// @Tags tracking
// @Accept json
// @Produce json
// @Param session body StartSessionRequest true "Rider and start point"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /v1/tracking/sessions [post]
func (h *TrackingHandler) StartSession(c *fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.RiderID == "" {
		return h.fail(c, http.StatusBadRequest, "rider_id is required")
	}

	session, err := h.sessions.Start(c.Context(), req.RiderID, domain.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(SessionResponse{
		SessionID: session.ID,
		Status:    string(session.Status),
	})
}

// StopSession godoc
// @Summary Complete a tracking session
// @Description Freezes aggregates and closes the session. Irreversible.
// @Tags tracking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param end body StopSessionRequest true "End point"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /v1/tracking/sessions/{id}/stop [post]
func (h *TrackingHandler) StopSession(c *fiber.Ctx) error {
	var req StopSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "invalid request body")
	}

	session, err := h.sessions.Stop(c.Context(), c.Params("id"), domain.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(SessionResponse{
		SessionID: session.ID,
		Status:    string(session.Status),
		Totals: &SessionTotals{
			DistanceM:     session.TotalDistanceM,
			DistanceKm:    session.TotalDistanceM / 1000,
			ActiveSeconds: session.ActiveSeconds,
			AvgSpeedKmh:   session.AvgSpeedKmh,
		},
	})
}

// PauseSession godoc
// @Summary Pause a tracking session
// @Tags tracking
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /v1/tracking/sessions/{id}/pause [post]
func (h *TrackingHandler) PauseSession(c *fiber.Ctx) error {
	session, err := h.sessions.Pause(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(SessionResponse{SessionID: session.ID, Status: string(session.Status)})
}

// ResumeSession godoc
// @Summary Resume a paused session
// @Tags tracking
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /v1/tracking/sessions/{id}/resume [post]
func (h *TrackingHandler) ResumeSession(c *fiber.Ctx) error {
	session, err := h.sessions.Resume(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(SessionResponse{SessionID: session.ID, Status: string(session.Status)})
}

// IngestCoordinate godoc
// @Summary Ingest one location sample
// @Description Validates and persists a single sample, updating session aggregates.
// @Tags tracking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param sample body CoordinateRequest true "Location sample"
// @Success 202 {object} CoordinateResponse
// @Failure 400 {object} CoordinateResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /v1/tracking/sessions/{id}/coordinates [post]
func (h *TrackingHandler) IngestCoordinate(c *fiber.Ctx) error {
	var req CoordinateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "invalid request body")
	}

	sample, verr := req.toSample()
	if verr != nil {
		return c.Status(http.StatusBadRequest).JSON(CoordinateResponse{Accepted: false, Reason: verr.Error()})
	}

	outcome, err := h.ingest.IngestOne(c.Context(), c.Params("id"), sample)
	if err != nil {
		var sampleErr *domain.ValidationError
		if errors.As(err, &sampleErr) {
			return c.Status(http.StatusBadRequest).JSON(CoordinateResponse{Accepted: false, Reason: sampleErr.Error()})
		}
		return h.mapError(c, err)
	}

	return c.Status(http.StatusAccepted).JSON(CoordinateResponse{
		Accepted:  true,
		Duplicate: outcome.Duplicate,
	})
}

// IngestBatch godoc
// @Summary Ingest an offline sample batch
// @Description Processes every sample independently and reports per-sample results.
// @Tags tracking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param batch body BatchRequest true "Offline backlog"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /v1/tracking/sessions/{id}/coordinates/batch [post]
func (h *TrackingHandler) IngestBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "invalid request body")
	}

	samples := make([]domain.TrackingSample, len(req.Samples))
	badTimestamps := make(map[int]string)
	for i, raw := range req.Samples {
		sample, verr := raw.toSample()
		if verr != nil {
			// Left with a zero timestamp: the service rejects it as one
			// per-sample failure, a poisoned entry never sinks its siblings.
			badTimestamps[i] = verr.Error()
			continue
		}
		samples[i] = sample
	}

	result, err := h.ingest.IngestBatch(c.Context(), c.Params("id"), samples)
	if err != nil {
		return h.mapError(c, err)
	}

	for i, reason := range badTimestamps {
		result.Results[i].Reason = reason
	}
	return c.JSON(result)
}

// GetSession godoc
// @Summary Get one session
// @Tags tracking
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.RouteSession
// @Failure 404 {object} ErrorResponse
// @Router /v1/tracking/sessions/{id} [get]
func (h *TrackingHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(session)
}

// ListSessions godoc
// @Summary List sessions for a rider and date range
// @Tags tracking
// @Produce json
// @Param rider_id query string false "Rider ID; empty lists all riders"
// @Param from query string false "Range start (RFC3339 or YYYY-MM-DD), default 30 days ago"
// @Param to query string false "Range end (RFC3339 or YYYY-MM-DD), default now"
// @Success 200 {array} domain.RouteSession
// @Failure 400 {object} ErrorResponse
// @Router /v1/tracking/sessions [get]
func (h *TrackingHandler) ListSessions(c *fiber.Ctx) error {
	from, to, err := ParseDateRange(c.Query("from"), c.Query("to"), time.Now())
	if err != nil {
		return h.fail(c, http.StatusBadRequest, err.Error())
	}

	sessions, err := h.sessions.List(c.Context(), c.Query("rider_id"), from, to)
	if err != nil {
		return h.mapError(c, err)
	}
	if sessions == nil {
		sessions = []domain.RouteSession{}
	}
	return c.JSON(sessions)
}

// mapError translates domain sentinels into HTTP statuses.
func (h *TrackingHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return h.fail(c, http.StatusNotFound, "session not found or already closed")
	case errors.Is(err, domain.ErrSessionConflict):
		return h.fail(c, http.StatusConflict, err.Error())
	default:
		logger.Get().Error("tracking request failed", zap.Error(err))
		return h.fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *TrackingHandler) fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		RayID:   rayID(c),
	})
}

func rayID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok {
		return v
	}
	return ""
}

// ParseDateRange resolves optional from/to query values, accepting RFC3339
// or calendar dates. Defaults to the trailing 30 days.
func ParseDateRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	to := now
	if toRaw != "" {
		parsed, err := parseDay(toRaw, true)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -30)
	if fromRaw != "" {
		parsed, err := parseDay(fromRaw, false)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, errors.New("from must not be after to")
	}
	return from, to, nil
}

// parseDay accepts RFC3339 or YYYY-MM-DD. Bare dates used as a range end
// are pushed to the following midnight so the whole day is included.
func parseDay(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("invalid date, want RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		return t.AddDate(0, 0, 1), nil
	}
	return t, nil
}
