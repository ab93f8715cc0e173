package mux

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cardroom-server/internal/jwt"
	"cardroom-server/pkg/room"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

const testRoomID = "b02bb905-1b29-4e65-8b67-6a3d1e9b8b2f"

func Test_getRoomID(t *testing.T) {
	setupJWT()
	registry := testRegistry()

	ts := httptest.NewServer(NewMux("", registry))
	defer ts.Close()

	token, _ := jwt.Sign("alice")

	// requires authorization
	assertGet(t, ts, "/room/"+testRoomID, nil, 401)

	// a path that is not a room id does not match the route
	assertGet(t, ts, "/room/not-a-uuid", nil, 404, token)

	// no round has been started in the room
	var errObj errorResponse
	assertGet(t, ts, "/room/"+testRoomID, &errObj, 404, token)
	assert.Equal(t, "no active betting round", errObj.Message)

	registry.ClientConnected(room.NewClient(nil, "alice", testRoomID))
	registry.ClientConnected(room.NewClient(nil, "bob", testRoomID))
	startRoundInRoom(t, registry, testRoomID, 25)

	var state roomStateResponse
	assertGet(t, ts, "/room/"+testRoomID, &state, 200, token)
	assert.Equal(t, testRoomID, state.RoomID)
	assert.Equal(t, 1, state.CurrentBettingRound)

	stateObj, ok := state.State.(map[string]interface{})
	if assert.True(t, ok) {
		assert.Equal(t, float64(25), stateObj["tableChips"])
	}
}

// startRoundInRoom drives a round start through a connected client, retrying
// until the registry has seated everyone
func startRoundInRoom(t *testing.T, registry *room.Registry, roomID string, carryOver int) {
	t.Helper()

	starter := room.NewClient(nil, "alice", roomID)
	registry.ClientConnected(starter)

	deadline := time.Now().Add(time.Second * 5)
	for {
		starter.ReceivedMessage(&room.PayloadIn{Action: "startRound", CarryOver: carryOver})

		if _, _, err := registry.Snapshot(roomID); err == nil {
			return
		}

		if time.Now().After(deadline) {
			t.Fatal("round never started")
		}

		time.Sleep(time.Millisecond * 25)
	}
}

func Test_getRoomIDWS(t *testing.T) {
	setupJWT()
	registry := testRegistry()

	ts := httptest.NewServer(NewMux("", registry))
	defer ts.Close()

	conns := map[string]*websocket.Conn{
		"alice": dialRoom(t, ts, "alice", testRoomID),
		"bob":   dialRoom(t, ts, "bob", testRoomID),
	}
	defer conns["alice"].Close()
	defer conns["bob"].Close()

	// retry until both connections are seated
	var order []string
	deadline := time.Now().Add(time.Second * 5)
	for {
		writeJSONMsg(t, conns["alice"], &room.PayloadIn{Action: "startRound"})

		msg := readMessage(t, conns["alice"])
		if msg["key"] == "roundStarted" {
			for _, id := range msg["order"].([]interface{}) {
				order = append(order, id.(string))
			}
			break
		}

		if time.Now().After(deadline) {
			t.Fatal("round never started over websocket")
		}

		time.Sleep(time.Millisecond * 25)
	}

	assert.Len(t, order, 2)
	first, second := conns[order[0]], conns[order[1]]

	// the opening user bets, everyone sees the result
	writeJSONMsg(t, first, &room.PayloadIn{Action: "bet", BettingType: "BBING"})

	result := readUntilKey(t, second, "bettingResult")
	assert.Equal(t, order[0], result["userId"])
	assert.Equal(t, "BBING", result["bettingType"])
	assert.Equal(t, float64(10), result["bettingAmount"])
	assert.Equal(t, false, result["isBettingComplete"])

	// the second user calls, completing the round
	writeJSONMsg(t, second, &room.PayloadIn{Action: "bet", BettingType: "CALL"})

	result = readUntilKey(t, second, "bettingResult")
	assert.Equal(t, order[1], result["userId"])
	assert.Equal(t, "CALL", result["bettingType"])
	assert.Equal(t, float64(20), result["tableChips"])
	assert.Equal(t, true, result["isBettingComplete"])
}

func dialRoom(t *testing.T, ts *httptest.Server, userID, roomID string) *websocket.Conn {
	t.Helper()

	token, err := jwt.Sign(userID)
	assert.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/room/" + roomID + "/ws?access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("could not dial %s: %v", wsURL, err)
	}

	return conn
}

func writeJSONMsg(t *testing.T, conn *websocket.Conn, msg *room.PayloadIn) {
	t.Helper()

	if err := conn.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second * 5))

	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}

	return msg
}

// readUntilKey discards events until one with the key arrives
func readUntilKey(t *testing.T, conn *websocket.Conn, key string) map[string]interface{} {
	t.Helper()

	for i := 0; i < 20; i++ {
		msg := readMessage(t, conn)
		if msg["key"] == key {
			return msg
		}
	}

	t.Fatalf("never received an event with key %s", key)
	return nil
}
