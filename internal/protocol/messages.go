package protocol

import "wonders/internal/engine"

// Message types: Server → Client
const (
	MsgTableUpdate      = "table_update"
	MsgSnapshotAccepted = "snapshot_accepted"
	MsgEvaluation       = "evaluation"
	MsgError            = "error"
)

// Message types: Client → Server
const (
	MsgJoin     = "join"
	MsgReady    = "ready"
	MsgStart    = "start"
	MsgSnapshot = "snapshot"
	MsgHand     = "hand"
	MsgEvaluate = "evaluate"
)

// TableUpdate is sent to all clients when seating changes.
type TableUpdate struct {
	TableID string        `json:"table_id"`
	Players []TablePlayer `json:"players"`
	Started bool          `json:"started"`
	Epoch   uint64        `json:"epoch,omitempty"`
}

type TablePlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Wonder string `json:"wonder"`
	Ready  bool   `json:"ready"`
}

// JoinMsg is sent by a player to take a seat.
type JoinMsg struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Wonder   string `json:"wonder,omitempty"`
}

// ReadyMsg is sent by a player to toggle ready state.
type ReadyMsg struct {
	Ready bool `json:"ready"`
}

// SnapshotMsg publishes a new table state. Exactly one of Snapshot or
// PlayersInfo is set; PlayersInfo carries the keyed-by-player form with
// neighbor links.
type SnapshotMsg struct {
	Snapshot    *engine.Snapshot `json:"snapshot,omitempty"`
	Epoch       uint64           `json:"epoch,omitempty"`
	PlayersInfo map[string]any   `json:"players_info,omitempty"`
}

// SnapshotAccepted confirms the stored epoch.
type SnapshotAccepted struct {
	Epoch uint64 `json:"epoch"`
}

// HandMsg asks for every card of a hand to be evaluated against the
// snapshot with the given epoch. Names are looked up in the catalogue.
type HandMsg struct {
	PlayerID string        `json:"player_id"`
	Epoch    uint64        `json:"epoch"`
	Cards    []engine.Card `json:"cards,omitempty"`
	Names    []string      `json:"names,omitempty"`
}

// EvaluateMsg asks for a single card.
type EvaluateMsg struct {
	PlayerID string       `json:"player_id"`
	Epoch    uint64       `json:"epoch"`
	Card     *engine.Card `json:"card,omitempty"`
	Name     string       `json:"name,omitempty"`
}

// EvaluationMsg carries the evaluated cards back.
type EvaluationMsg struct {
	PlayerID string          `json:"player_id"`
	Epoch    uint64          `json:"epoch"`
	Results  []engine.Result `json:"results"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Message string `json:"message"`
}

// EvaluateRequest is the body of the stateless HTTP evaluation. The table
// state is given inline, in either snapshot form.
type EvaluateRequest struct {
	SnapshotMsg
	PlayerID string        `json:"player_id"`
	Cards    []engine.Card `json:"cards,omitempty"`
	Names    []string      `json:"names,omitempty"`
}

// EvaluateResponse answers an EvaluateRequest.
type EvaluateResponse struct {
	PlayerID string          `json:"player_id"`
	Epoch    uint64          `json:"epoch"`
	Results  []engine.Result `json:"results"`
}
