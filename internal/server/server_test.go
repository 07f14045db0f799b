package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wonders/internal/engine"
	"wonders/internal/engine/effects"
	"wonders/internal/protocol"
	"wonders/internal/server"
	"wonders/internal/store"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	eval := engine.NewEvaluator(engine.DefaultConfig(), effects.Default())
	srv := server.New(server.Config{PublicURL: "http://wonders.test"}, store.NewMemory(log), eval, log)
	return srv.Router()
}

// table: p1 makes stone, p2 (clockwise) wood, p3 clay.
func testSnapshot(epoch uint64) *engine.Snapshot {
	return &engine.Snapshot{
		Epoch: epoch,
		Seats: []string{"p1", "p2", "p3"},
		Players: map[string]*engine.PlayerState{
			"p1": {ID: "p1", WonderResource: "S", Coins: 3},
			"p2": {ID: "p2", WonderResource: "W", Coins: 3},
			"p3": {ID: "p3", WonderResource: "C", Coins: 3},
		},
	}
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTable(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/tables", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create table: got %d, want %d", w.Code, http.StatusCreated)
	}
	var resp struct {
		TableID string `json:"table_id"`
		JoinURL string `json:"join_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.JoinURL, "http://wonders.test/tables/") {
		t.Errorf("join url: got %q", resp.JoinURL)
	}
	return resp.TableID
}

func TestTableQR(t *testing.T) {
	r := newRouter(t)
	id := createTable(t, r)

	w := do(t, r, http.MethodGet, "/api/tables/"+id+"/qr?size=128", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("qr: got %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type: got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	if w := do(t, r, http.MethodGet, "/api/tables/nope/qr", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown table: got %d, want 404", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/tables/"+id+"/snapshot", nil); w.Code != http.StatusNotFound {
		t.Errorf("snapshot before start: got %d, want 404", w.Code)
	}
}

func TestCards(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/cards?age=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d", w.Code)
	}
	var list struct {
		Cards []struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Cards) == 0 {
		t.Fatal("age 1 is empty")
	}
	for _, c := range list.Cards {
		if c.Age != 1 {
			t.Errorf("%s: got age %d, want 1", c.Name, c.Age)
		}
	}

	if w := do(t, r, http.MethodGet, "/api/cards?age=9", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad age: got %d, want 400", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/cards/baths", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"name":"Baths"`) {
		t.Errorf("get card: got %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/cards/Bath", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown card: got %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Baths") {
		t.Errorf("expected a suggestion, got %s", w.Body.String())
	}
}

func TestEvaluate(t *testing.T) {
	r := newRouter(t)

	req := protocol.EvaluateRequest{
		SnapshotMsg: protocol.SnapshotMsg{Snapshot: testSnapshot(5)},
		PlayerID:    "p1",
		Names:       []string{"Baths", "Stockade"},
	}
	w := do(t, r, http.MethodPost, "/api/evaluate", req)
	if w.Code != http.StatusOK {
		t.Fatalf("evaluate: got %d %s", w.Code, w.Body.String())
	}
	var resp protocol.EvaluateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Epoch != 5 || len(resp.Results) != 2 {
		t.Fatalf("got %+v", resp)
	}
	if got := resp.Results[0]; got.Reason != engine.ReasonOwnResources || !got.Affordable {
		t.Errorf("Baths: got %+v", got)
	}
	stockade := resp.Results[1]
	if stockade.Reason != engine.ReasonPurchase || len(stockade.Combos) != 1 {
		t.Fatalf("Stockade: got %+v", stockade)
	}
	if c := stockade.Combos[0].Clockwise; c.Count != 1 || c.Cost != 2 {
		t.Errorf("Stockade clockwise: got %+v", c)
	}

	bad := []struct {
		name string
		req  protocol.EvaluateRequest
		code int
	}{
		{"no player", protocol.EvaluateRequest{SnapshotMsg: protocol.SnapshotMsg{Snapshot: testSnapshot(1)}, Names: []string{"Baths"}}, http.StatusBadRequest},
		{"unknown player", protocol.EvaluateRequest{SnapshotMsg: protocol.SnapshotMsg{Snapshot: testSnapshot(1)}, PlayerID: "p9", Names: []string{"Baths"}}, http.StatusUnprocessableEntity},
		{"no snapshot", protocol.EvaluateRequest{PlayerID: "p1", Names: []string{"Baths"}}, http.StatusUnprocessableEntity},
		{"unknown card", protocol.EvaluateRequest{SnapshotMsg: protocol.SnapshotMsg{Snapshot: testSnapshot(1)}, PlayerID: "p1", Names: []string{"Bathz"}}, http.StatusBadRequest},
	}
	for _, tt := range bad {
		if w := do(t, r, http.MethodPost, "/api/evaluate", tt.req); w.Code != tt.code {
			t.Errorf("%s: got %d, want %d (%s)", tt.name, w.Code, tt.code, w.Body.String())
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(protocol.MustEnvelope(typ, payload)); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

// await reads until a message of type typ arrives.
func await(t *testing.T, conn *websocket.Conn, typ string, v any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if env.Type != typ {
			continue
		}
		if err := env.Decode(v); err != nil {
			t.Fatal(err)
		}
		return
	}
}

func TestWebSocketSnapshotFlow(t *testing.T) {
	r := newRouter(t)
	ts := httptest.NewServer(r)
	defer ts.Close()
	id := createTable(t, r)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?table=" + id + "&player=p1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var update protocol.TableUpdate
	await(t, conn, protocol.MsgTableUpdate, &update)
	if update.TableID != id {
		t.Errorf("table id: got %q, want %q", update.TableID, id)
	}

	send(t, conn, protocol.MsgJoin, protocol.JoinMsg{PlayerID: "p1", Name: "Ann", Wonder: "Gizah"})
	await(t, conn, protocol.MsgTableUpdate, &update)
	if len(update.Players) != 1 || update.Players[0].Wonder != "Gizah" {
		t.Errorf("after join: got %+v", update.Players)
	}

	send(t, conn, protocol.MsgSnapshot, protocol.SnapshotMsg{Snapshot: testSnapshot(1)})
	var accepted protocol.SnapshotAccepted
	await(t, conn, protocol.MsgSnapshotAccepted, &accepted)
	if accepted.Epoch != 1 {
		t.Errorf("accepted epoch: got %d, want 1", accepted.Epoch)
	}

	send(t, conn, protocol.MsgHand, protocol.HandMsg{PlayerID: "p1", Epoch: 1, Names: []string{"Baths", "Barracks"}})
	var eval protocol.EvaluationMsg
	await(t, conn, protocol.MsgEvaluation, &eval)
	if len(eval.Results) != 2 {
		t.Fatalf("results: got %d, want 2", len(eval.Results))
	}
	if !eval.Results[0].Affordable {
		t.Error("Baths should be affordable")
	}
	if eval.Results[1].Affordable || eval.Results[1].Reason != engine.ReasonInsufficientSupply {
		t.Errorf("Barracks: got %+v", eval.Results[1])
	}

	send(t, conn, protocol.MsgEvaluate, protocol.EvaluateMsg{PlayerID: "p1", Epoch: 1, Name: "Stockade"})
	await(t, conn, protocol.MsgEvaluation, &eval)
	if len(eval.Results) != 1 || !eval.Results[0].Affordable {
		t.Errorf("Stockade: got %+v", eval.Results)
	}

	var errMsg protocol.ErrorMsg
	send(t, conn, protocol.MsgHand, protocol.HandMsg{PlayerID: "p1", Epoch: 0, Names: []string{"Baths"}})
	await(t, conn, protocol.MsgError, &errMsg)
	if !strings.Contains(errMsg.Message, "stale") {
		t.Errorf("old epoch: got %q", errMsg.Message)
	}

	send(t, conn, protocol.MsgSnapshot, protocol.SnapshotMsg{Snapshot: testSnapshot(1)})
	await(t, conn, protocol.MsgError, &errMsg)
	if !strings.Contains(errMsg.Message, "stale") {
		t.Errorf("republished epoch: got %q", errMsg.Message)
	}
}
