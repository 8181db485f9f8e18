package server

import (
	"strings"
	"testing"
)

func TestDefaultRoomExistsAndAcceptsEmptyCode(t *testing.T) {
	rm := NewRoomManager(0)

	if _, ok := rm.Room(DefaultRoomID); !ok {
		t.Fatalf("default room should be pre-seeded")
	}

	conn := &fakeConn{}
	rm.JoinRoomByCode(conn, "p1", "Alice", "")
	if conn.count(EvJoinSuccess) != 1 {
		t.Fatalf("empty code should join the default room, events: %v", conn.names())
	}

	conn2 := &fakeConn{}
	rm.JoinRoomByCode(conn2, "p2", "Bob", "DEFAULT")
	if conn2.count(EvJoinSuccess) != 1 {
		t.Fatalf("code matching is case-insensitive for the default room")
	}

	game, _ := rm.Room(DefaultRoomID)
	if game.PlayerCount() != 2 {
		t.Fatalf("expected 2 players in the default room, got %d", game.PlayerCount())
	}
}

func TestCreateRoomAutoJoinsCreator(t *testing.T) {
	rm := NewRoomManager(0)

	conn := &fakeConn{}
	rm.CreateRoom(conn, "p1", "Alice", "My Room")

	payload, ok := conn.last(EvRoomCreated)
	if !ok {
		t.Fatalf("expected room_created ack")
	}
	rc := payload.(RoomCreatedPayload)
	if rc.RoomName != "My Room" {
		t.Fatalf("expected room name in ack, got %q", rc.RoomName)
	}
	if !strings.HasPrefix(rc.RoomID, "room_") {
		t.Fatalf("unexpected room id %q", rc.RoomID)
	}
	if conn.count(EvJoinSuccess) != 1 {
		t.Fatalf("creator should be auto-joined")
	}

	game, ok := rm.Room(rc.RoomID)
	if !ok {
		t.Fatalf("created room not registered")
	}
	if game.PlayerCount() != 1 {
		t.Fatalf("expected creator inside the room, got %d players", game.PlayerCount())
	}
}

func TestJoinByCodeMatchesRoomName(t *testing.T) {
	rm := NewRoomManager(0)

	creator := &fakeConn{}
	rm.CreateRoom(creator, "p1", "Alice", "secret-code")

	joiner := &fakeConn{}
	rm.JoinRoomByCode(joiner, "p2", "Bob", "secret-code")
	if joiner.count(EvJoinSuccess) != 1 {
		t.Fatalf("exact room name should act as join code")
	}
	// 房主应看到新人广播
	if creator.count(EvPlayerJoined) < 2 {
		t.Fatalf("creator should see the player_joined broadcast")
	}

	missing := &fakeConn{}
	rm.JoinRoomByCode(missing, "p3", "Carol", "no-such-room")
	payload, ok := missing.last(EvJoinFailed)
	if !ok {
		t.Fatalf("unknown code should fail")
	}
	if reason := payload.(JoinFailedPayload).Reason; reason != `Room "no-such-room" not found` {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestEmptyNonDefaultRoomIsCollected(t *testing.T) {
	rm := NewRoomManager(0)

	conn := &fakeConn{}
	rm.CreateRoom(conn, "p1", "Alice", "Temp")
	payload, _ := conn.last(EvRoomCreated)
	roomID := payload.(RoomCreatedPayload).RoomID

	rm.LeaveRoom("p1")

	if _, ok := rm.Room(roomID); ok {
		t.Fatalf("empty non-default room should be deleted")
	}
	if _, ok := rm.Room(DefaultRoomID); !ok {
		t.Fatalf("default room must survive")
	}
}

func TestDefaultRoomSurvivesEmptiness(t *testing.T) {
	rm := NewRoomManager(0)

	conn := &fakeConn{}
	rm.JoinRoomByCode(conn, "p1", "Alice", "default")
	rm.LeaveRoom("p1")

	game, ok := rm.Room(DefaultRoomID)
	if !ok {
		t.Fatalf("default room deleted after emptying")
	}
	if game.PlayerCount() != 0 {
		t.Fatalf("expected empty default room")
	}
}

func TestDisconnectRoutesLikeLeave(t *testing.T) {
	rm := NewRoomManager(0)

	a, b := &fakeConn{}, &fakeConn{}
	rm.JoinRoomByCode(a, "p1", "Alice", "")
	rm.JoinRoomByCode(b, "p2", "Bob", "")
	rm.HandleStartGame("p1")

	rm.HandleDisconnect("p1")

	payload, ok := b.last(EvGameOver)
	if !ok {
		t.Fatalf("pacman disconnect mid-game should end it, events: %v", b.names())
	}
	if w := payload.(GameOverPayload).Winner; w != WinnerGhosts {
		t.Fatalf("expected ghosts to win, got %s", w)
	}
	if b.count(EvPlayerLeft) != 1 {
		t.Fatalf("expected player_left broadcast")
	}

	// 断开后连接不再映射到任何房间，后续动作被静默忽略
	rm.HandlePlayerMove("p1", DirRight)
	rm.HandleStartGame("p1")
}

func TestUnmappedConnectionsAreIgnored(t *testing.T) {
	rm := NewRoomManager(0)

	rm.HandlePlayerMove("ghost-conn", DirUp)
	rm.HandleStartGame("ghost-conn")
	rm.HandleRestartGame("ghost-conn")
	rm.LeaveRoom("ghost-conn")
	rm.HandleDisconnect("ghost-conn")
	// 走到这里没有 panic 即通过
}

func TestSwitchingRoomsLeavesPrevious(t *testing.T) {
	rm := NewRoomManager(0)

	conn := &fakeConn{}
	rm.JoinRoomByCode(conn, "p1", "Alice", "")

	other := &fakeConn{}
	rm.CreateRoom(other, "p2", "Bob", "Other Room")

	rm.JoinRoomByCode(conn, "p1", "Alice", "Other Room")

	defaultGame, _ := rm.Room(DefaultRoomID)
	if defaultGame.PlayerCount() != 0 {
		t.Fatalf("joining another room should leave the previous one")
	}
	payload, _ := other.last(EvRoomCreated)
	game, _ := rm.Room(payload.(RoomCreatedPayload).RoomID)
	if game.PlayerCount() != 2 {
		t.Fatalf("expected both players in the new room, got %d", game.PlayerCount())
	}
}

func TestRoomsListSummaries(t *testing.T) {
	rm := NewRoomManager(0)

	a, b := &fakeConn{}, &fakeConn{}
	rm.JoinRoomByCode(a, "p1", "Alice", "")
	rm.JoinRoomByCode(b, "p2", "Bob", "")
	rm.HandleStartGame("p1")

	c := &fakeConn{}
	rm.CreateRoom(c, "p3", "Carol", "Second")

	rooms := rm.RoomsList()
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	byID := make(map[string]RoomInfo, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
		if r.MaxPlayers != MaxPlayers {
			t.Fatalf("room %s: expected max players %d, got %d", r.ID, MaxPlayers, r.MaxPlayers)
		}
	}
	def, ok := byID[DefaultRoomID]
	if !ok {
		t.Fatalf("rooms list missing default room")
	}
	if def.Name != "Default Room" || def.PlayerCount != 2 || !def.IsStarted {
		t.Fatalf("unexpected default room summary: %+v", def)
	}

	lobby := &fakeConn{}
	rm.SendRoomsList(lobby)
	payload, ok := lobby.last(EvRoomsList)
	if !ok {
		t.Fatalf("expected rooms_list event")
	}
	if got := len(payload.(RoomsListPayload).Rooms); got != 2 {
		t.Fatalf("rooms_list should carry 2 rooms, got %d", got)
	}
}
