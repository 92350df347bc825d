package room

import (
	"errors"
	"testing"
	"time"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/internal/service"
)

func newTestStore() *Store {
	return NewStore(time.Hour, time.Minute)
}

func TestStore_CreateRoom(t *testing.T) {
	s := newTestStore()

	r := s.CreateRoom("host-conn", "Volcano", "https://img/volcano.png")

	if len(r.ID) != models.RoomCodeLength {
		t.Errorf("room code length = %d, want %d", len(r.ID), models.RoomCodeLength)
	}
	if r.State != models.RoomStateWaiting {
		t.Errorf("state = %q, want waiting", r.State)
	}
	if r.Players.Player1 != nil || r.Players.Player2 != nil {
		t.Error("host must not occupy a player slot")
	}
	if r.Environment != "Volcano" {
		t.Errorf("environment = %q", r.Environment)
	}
	if !r.ExpiresAt.After(r.CreatedAt) {
		t.Error("expiresAt should be after createdAt")
	}

	got, ok := s.GetRoom(r.ID)
	if !ok || got.ID != r.ID {
		t.Error("created room not retrievable")
	}
}

func TestStore_CreateRoom_UniqueCodes(t *testing.T) {
	s := newTestStore()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		r := s.CreateRoom("host", "Arena", "")
		if seen[r.ID] {
			t.Fatalf("duplicate room code %q", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestStore_JoinRoom_SlotOrder(t *testing.T) {
	s := newTestStore()
	r := s.CreateRoom("host", "Volcano", "")

	alice, err := s.JoinRoom(r.ID, "conn-a", "Alice")
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	bob, err := s.JoinRoom(r.ID, "conn-b", "Bob")
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}

	// 선착순 고정: 첫 참가자가 항상 player1
	if r.Players.Player1.Username != "Alice" {
		t.Errorf("player1 = %q, want Alice", r.Players.Player1.Username)
	}
	if r.Players.Player2.Username != "Bob" {
		t.Errorf("player2 = %q, want Bob", r.Players.Player2.Username)
	}

	if alice.PlayerID == bob.PlayerID {
		t.Error("players must get distinct logical ids")
	}
	if alice.PlayerID == alice.ConnectionID {
		t.Error("playerId must be distinct from connectionId")
	}

	if !s.IsRoomFull(r.ID) {
		t.Error("room with two players should be full")
	}
}

func TestStore_JoinRoom_Errors(t *testing.T) {
	s := newTestStore()

	if _, err := s.JoinRoom("NOSUCH", "conn", "Alice"); !errors.Is(err, service.ErrRoomNotFound) {
		t.Errorf("join unknown room = %v, want ErrRoomNotFound", err)
	}

	r := s.CreateRoom("host", "Volcano", "")
	s.JoinRoom(r.ID, "conn-a", "Alice")
	s.JoinRoom(r.ID, "conn-b", "Bob")

	if _, err := s.JoinRoom(r.ID, "conn-c", "Carol"); !errors.Is(err, service.ErrRoomFull) {
		t.Errorf("join full room = %v, want ErrRoomFull", err)
	}

	// 실패한 참가는 기존 슬롯을 건드리지 않는다
	if r.Players.Player1.Username != "Alice" || r.Players.Player2.Username != "Bob" {
		t.Error("failed join mutated existing slots")
	}
}

func TestStore_PlayerLookups(t *testing.T) {
	s := newTestStore()
	r := s.CreateRoom("host", "Volcano", "")
	s.JoinRoom(r.ID, "conn-a", "Alice")
	s.JoinRoom(r.ID, "conn-b", "Bob")

	slot, ok := s.GetPlayerSlot(r.ID, "conn-b")
	if !ok || slot != models.SlotPlayer2 {
		t.Errorf("GetPlayerSlot(conn-b) = %v %v, want player2 true", slot, ok)
	}

	player, ok := s.GetPlayerByConnectionID(r.ID, "conn-a")
	if !ok || player.Username != "Alice" {
		t.Errorf("GetPlayerByConnectionID(conn-a) = %v %v", player, ok)
	}

	// 미참가 연결은 찾지 못한다 (호출자는 조용히 무시)
	if _, ok := s.GetPlayerSlot(r.ID, "stranger"); ok {
		t.Error("unknown connection should not resolve to a slot")
	}
	if _, ok := s.GetPlayerByConnectionID("NOSUCH", "conn-a"); ok {
		t.Error("unknown room should not resolve a player")
	}
}

func TestStore_FindRoomByConnectionID(t *testing.T) {
	s := newTestStore()
	r := s.CreateRoom("host-conn", "Volcano", "")
	s.JoinRoom(r.ID, "conn-a", "Alice")

	if got, ok := s.FindRoomByConnectionID("conn-a"); !ok || got.ID != r.ID {
		t.Error("player connection should resolve to its room")
	}
	if got, ok := s.FindRoomByConnectionID("host-conn"); !ok || got.ID != r.ID {
		t.Error("host connection should resolve to its room")
	}
	if _, ok := s.FindRoomByConnectionID("stranger"); ok {
		t.Error("unknown connection should not resolve")
	}
}

func TestStore_SetRoomState(t *testing.T) {
	s := newTestStore()
	r := s.CreateRoom("host", "Volcano", "")

	s.SetRoomState(r.ID, models.RoomStateCharacterSelect)
	if r.State != models.RoomStateCharacterSelect {
		t.Errorf("state = %q, want character_select", r.State)
	}
}

func TestStore_SweepExpired(t *testing.T) {
	s := NewStore(-time.Second, time.Minute) // 생성 즉시 만료
	expired := s.CreateRoom("host", "Volcano", "")

	keeper := s.CreateRoom("host2", "Glacier", "")
	keeper.ExpiresAt = time.Now().Add(time.Hour)

	s.sweepExpired()

	if _, ok := s.GetRoom(expired.ID); ok {
		t.Error("expired room should be swept")
	}
	if _, ok := s.GetRoom(keeper.ID); !ok {
		t.Error("live room should survive the sweep")
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}
