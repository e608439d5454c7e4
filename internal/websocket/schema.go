package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing      Action = "ping"
	ActionViolation Action = "violation"
)

// Request is the single inbound message shape. Kind is set only on
// violation reports (tab switch, fullscreen exit, focus loss).
type Request struct {
	Action Action `json:"action"`
	Kind   string `json:"kind,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick       Event = "tick"
	EventWarn       Event = "warn"
	EventExpired    Event = "expired"
	EventTerminated Event = "terminated"
	EventViolation  Event = "violation_recorded"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// TickResponse carries the periodic timer snapshot. Warn escalates as the
// remaining budget shrinks; the final message of a stream is expired or
// terminated.
type TickResponse struct {
	Event            Event  `json:"event"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Warn             string `json:"warn_level"`
}

// ViolationResponse acknowledges a recorded violation with the running count.
type ViolationResponse struct {
	Event      Event `json:"event"`
	Count      int   `json:"count"`
	Terminated bool  `json:"terminated"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
