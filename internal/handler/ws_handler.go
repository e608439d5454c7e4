package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/clock"
	"github.com/attestly/attest-backend/internal/middleware"
	"github.com/attestly/attest-backend/internal/model"
	"github.com/attestly/attest-backend/internal/service"
	ws "github.com/attestly/attest-backend/internal/websocket"
)

const timerTickInterval = time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the WebSocket timer stream.
type WSHandler struct {
	sessionService *service.SessionService
	timerService   *service.TimerService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, timerService *service.TimerService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		timerService:   timerService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TimerStream godoc
// WS /ws/v1/sessions/:session_id/timer
// Streams timer ticks for an active session and accepts violation reports.
// The stream ends with an expired or terminated event.
func (h *WSHandler) TimerStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	participantID := claims.UserID

	// Ownership check up front; the per-tick guard handles everything else.
	if _, err := h.sessionService.ResolveOwned(c.Request.Context(), participantID, sessionID); err != nil {
		ws.WriteError(conn, "session not found")
		return
	}

	wsLog := h.log.With().
		Int("participant_id", participantID).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Info().Msg("Participant connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Reader goroutine: pings and violation reports.
	incoming := make(chan ws.Request)
	go func() {
		defer cancel()
		for {
			var msg ws.Request
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case incoming <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(timerTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-incoming:
			switch msg.Action {
			case ws.ActionPing:
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})

			case ws.ActionViolation:
				count, terminated, err := h.sessionService.RecordViolation(ctx, participantID, sessionID)
				if err != nil {
					if h.writeTerminalFor(conn, err) {
						return
					}
					ws.WriteError(conn, "violation not recorded")
					continue
				}
				ws.WriteTyped(conn, ws.ViolationResponse{
					Event:      ws.EventViolation,
					Count:      count,
					Terminated: terminated,
				})
				if terminated {
					wsLog.Warn().Int("violations", count).Str("kind", msg.Kind).Msg("Session terminated over violations")
					ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTerminated})
					return
				}

			default:
				ws.WriteError(conn, "unknown action")
			}

		case <-ticker.C:
			info, err := h.timerService.Info(ctx, participantID, sessionID)
			if err != nil {
				ws.WriteError(conn, "timer unavailable")
				return
			}

			if info.Status == model.SessionStatusTerminated {
				ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTerminated})
				return
			}
			if info.IsExpired || info.Status == model.SessionStatusCompleted {
				ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventExpired})
				return
			}

			event := ws.EventTick
			if info.Warn != clock.WarnNone {
				event = ws.EventWarn
			}
			if err := ws.WriteTyped(conn, ws.TickResponse{
				Event:            event,
				RemainingSeconds: info.RemainingSeconds,
				Warn:             string(info.Warn),
			}); err != nil {
				return
			}
		}
	}
}

// writeTerminalFor translates a terminal-state error into its closing event.
// Returns true when the stream should end.
func (h *WSHandler) writeTerminalFor(conn *websocket.Conn, err error) bool {
	switch {
	case errors.Is(err, service.ErrTimeExpired), errors.Is(err, service.ErrAlreadyFinished):
		ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventExpired})
		return true
	case errors.Is(err, service.ErrTerminated):
		ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTerminated})
		return true
	case errors.Is(err, service.ErrSessionNotActive):
		ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventExpired})
		return true
	}
	return false
}
