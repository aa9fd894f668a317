// Package streaming defines the JSON messages exchanged with the dashboard
// page over its websocket.
package streaming

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/enixma/dashboard/pkg/core"
)

// Messages sent by the page. Every type except TypePointer names a command.
const (
	TypePointer            = "pointer"
	TypeAreaAdd            = "area.add"
	TypeAreaReset          = "area.reset"
	TypeAreaDelete         = "area.delete"
	TypeCrosslineAdd       = "crossline.add"
	TypeCrosslineReset     = "crossline.reset"
	TypeCrosslineDelete    = "crossline.delete"
	TypeCrosslineDirection = "crossline.direction"
	TypeLanes              = "lanes"
	TypeSnapshotRequest    = "snapshot"
	TypeStatsRefresh       = "stats.refresh"
)

// Messages sent by the server.
const (
	TypeAck      = "ack"
	TypeError    = "error"
	TypeCursor   = "cursor"
	TypePanel    = "panel"
	TypeSnapshot = "snapshot"
	TypeStats    = "stats"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into an envelope of the given type.
func NewEnvelope(typ string, payload any) (Envelope, error) {
	env := Envelope{Type: typ}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return env, fmt.Errorf("failed to encode %s payload: %w", typ, err)
	}
	env.Payload = raw
	return env, nil
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// ErrorMessage reports a rejected message.
type ErrorMessage struct {
	Type  string `json:"type"` // always "error"
	For   string `json:"for"`
	Error string `json:"error"`
}

// PointerPayload is one pointer sample from the overlay canvas.
type PointerPayload = core.PointerEvent

// TargetPayload names the area or crossline a command applies to.
type TargetPayload struct {
	Name string `json:"name"`
}

// LanesPayload carries the raw lane-count input for a crossline.
type LanesPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CursorPayload is the cursor the page should show over the overlay.
type CursorPayload struct {
	Cursor core.Cursor `json:"cursor"`
}

// PanelPayload tells the page whether an area or crossline panel has a
// shape to show.
type PanelPayload struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Lanes   int    `json:"lanes,omitempty"`
}

// StatsPayload carries every chart series fetched at one instant.
type StatsPayload struct {
	At     time.Time                  `json:"at"`
	PCU    bool                       `json:"pcu"`
	Series map[string]json.RawMessage `json:"series"`
}
