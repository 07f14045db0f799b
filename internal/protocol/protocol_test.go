package protocol_test

import (
	"encoding/json"
	"errors"
	"testing"

	"wonders/internal/engine"
	"wonders/internal/protocol"
)

const playersInfo = `{
  "p1": {
    "wonderName": "olympia", "wonderResource": "W", "coins": 4,
    "clockwisePlayer": "p2", "counterClockwisePlayer": "p3",
    "stagesInfo": [
      {"isBuilt": true, "isResource": false, "custom": "discount"},
      {"isBuilt": false, "isResource": true, "resource": "O"}
    ],
    "cardsPlayed": [
      {"name": "Tree Farm", "color": "brown", "cost": 1, "isResource": true, "value": "W/C"},
      {"name": "Baths", "color": "blue", "cost": "S"},
      {"name": "Marketplace", "color": "yellow", "cost": null}
    ]
  },
  "p2": {
    "wonderResource": "O", "coins": 2,
    "clockwisePlayer": "p3", "counterClockwisePlayer": "p1",
    "cardsPlayed": [{"name": "Glassworks", "color": "gray", "isResource": true, "value": "G"}]
  },
  "p3": {
    "wonderResource": "C", "coins": 0,
    "clockwisePlayer": "p1", "counterClockwisePlayer": "p2"
  }
}`

func decodeInfo(t *testing.T, raw string) map[string]any {
	t.Helper()
	var info map[string]any
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		t.Fatal(err)
	}
	return info
}

func TestDecodePlayersInfo(t *testing.T) {
	snap, err := protocol.DecodePlayersInfo(decodeInfo(t, playersInfo), 7)
	if err != nil {
		t.Fatalf("DecodePlayersInfo: %v", err)
	}
	if snap.Epoch != 7 {
		t.Errorf("epoch: got %d, want 7", snap.Epoch)
	}
	want := []string{"p1", "p2", "p3"}
	for i := range want {
		if snap.Seats[i] != want[i] {
			t.Fatalf("seats: got %v, want %v", snap.Seats, want)
		}
	}

	p1 := snap.Players["p1"]
	if p1.Coins != 4 || p1.WonderResource != "W" || p1.Wonder != "olympia" {
		t.Errorf("p1: got %+v", p1)
	}
	if !p1.Stages[0].Built || p1.Stages[0].Discount != "discount" || p1.Stages[1].Resource != "O" {
		t.Errorf("p1 stages: got %+v", p1.Stages)
	}
	tests := []struct {
		i        int
		kind     engine.CostKind
		color    engine.CardColor
		produces string
	}{
		{0, engine.CostCoins, engine.ColorBrown, "W/C"},
		{1, engine.CostResources, engine.ColorBlue, ""},
		{2, engine.CostFree, engine.ColorYellow, ""},
	}
	for _, tt := range tests {
		c := p1.Played[tt.i]
		if c.Cost.Kind != tt.kind || c.Color != tt.color || c.Produces != tt.produces {
			t.Errorf("card %s: got %s %s %q", c.Name, c.Cost.Kind, c.Color, c.Produces)
		}
	}
	if snap.Players["p2"].Played[0].Color != engine.ColorGrey {
		t.Error("gray should decode as grey")
	}

	cw, ccw, err := snap.Neighbors("p1")
	if err != nil || cw.ID != "p2" || ccw.ID != "p3" {
		t.Errorf("neighbors of p1: got %v %v %v", cw, ccw, err)
	}
}

func TestDecodePlayersInfoBadRing(t *testing.T) {
	tests := map[string]string{
		"mismatched link": `{
			"a": {"clockwisePlayer": "b", "counterClockwisePlayer": "c"},
			"b": {"clockwisePlayer": "c", "counterClockwisePlayer": "c"},
			"c": {"clockwisePlayer": "a", "counterClockwisePlayer": "b"}}`,
		"missing neighbor": `{
			"a": {"clockwisePlayer": "b", "counterClockwisePlayer": "c"},
			"b": {"clockwisePlayer": "x", "counterClockwisePlayer": "a"},
			"c": {"clockwisePlayer": "a", "counterClockwisePlayer": "b"}}`,
		"two rings": `{
			"a": {"clockwisePlayer": "b", "counterClockwisePlayer": "b"},
			"b": {"clockwisePlayer": "a", "counterClockwisePlayer": "a"},
			"c": {"clockwisePlayer": "c", "counterClockwisePlayer": "c"}}`,
		"too small": `{
			"a": {"clockwisePlayer": "b", "counterClockwisePlayer": "b"},
			"b": {"clockwisePlayer": "a", "counterClockwisePlayer": "a"}}`,
	}
	for name, raw := range tests {
		_, err := protocol.DecodePlayersInfo(decodeInfo(t, raw), 1)
		if !errors.Is(err, engine.ErrSnapshotInconsistency) {
			t.Errorf("%s: expected snapshot inconsistency, got %v", name, err)
		}
	}
}

func TestDecodePlayersInfoBadColor(t *testing.T) {
	raw := `{"a": {"cardsPlayed": [{"name": "X", "color": "violet"}]}}`
	if _, err := protocol.DecodePlayersInfo(decodeInfo(t, raw), 1); err == nil {
		t.Error("expected error for unknown color")
	}
}

func TestDecodePlayersInfoFractionalCost(t *testing.T) {
	raw := `{"a": {"cardsPlayed": [{"name": "X", "color": "blue", "cost": 2.7}]}}`
	if _, err := protocol.DecodePlayersInfo(decodeInfo(t, raw), 1); err == nil {
		t.Error("expected error for a fractional coin cost")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := protocol.MustEnvelope(protocol.MsgJoin, protocol.JoinMsg{PlayerID: "p1", Name: "Ann"})
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	var back protocol.Envelope
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	var msg protocol.JoinMsg
	if err := back.Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if back.Type != protocol.MsgJoin || msg.PlayerID != "p1" || msg.Name != "Ann" {
		t.Errorf("got %s %+v", back.Type, msg)
	}

	bad := protocol.Envelope{Type: protocol.MsgReady, Payload: json.RawMessage(`"yes"`)}
	if err := bad.Decode(&protocol.ReadyMsg{}); err == nil {
		t.Error("expected decode error")
	}
}

func TestSnapshotMsgResolve(t *testing.T) {
	var msg protocol.SnapshotMsg
	raw := `{"epoch": 3, "players_info": ` + playersInfo + `}`
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatal(err)
	}
	snap, err := msg.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if snap.Epoch != 3 || len(snap.Seats) != 3 {
		t.Errorf("got epoch %d seats %v", snap.Epoch, snap.Seats)
	}

	direct := protocol.SnapshotMsg{Epoch: 4, Snapshot: snap}
	got, err := direct.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if got.Epoch != 3 {
		t.Errorf("inline snapshot keeps its epoch: got %d, want 3", got.Epoch)
	}

	if _, err := (protocol.SnapshotMsg{}).Resolve(); !errors.Is(err, engine.ErrSnapshotInconsistency) {
		t.Errorf("empty message: got %v", err)
	}
}
