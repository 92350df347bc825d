package room

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/internal/service"
)

// roomCodeCharset 헷갈리는 문자(O/0, I/1/L)를 제외한 룸 코드 문자셋
const roomCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

type entry struct {
	mu   sync.Mutex
	room *models.Room
}

// Store 인메모리 룸 레지스트리
// 전역 상태 대신 컴포지션 루트가 소유하고 핸들러에 주입된다
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*entry

	ttl           time.Duration
	sweepInterval time.Duration

	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	runMu    sync.Mutex
}

// NewStore 룸 스토어 생성
func NewStore(ttl, sweepInterval time.Duration) *Store {
	logger, _ := zap.NewProduction()
	return &Store{
		rooms:         make(map[string]*entry),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// CreateRoom 새 룸 생성. 호스트는 슬롯에 배정되지 않는다
func (s *Store) CreateRoom(hostConnID, environment, environmentImageURL string) *models.Room {
	now := time.Now()
	room := &models.Room{
		HostConnectionID:    hostConnID,
		State:               models.RoomStateWaiting,
		Environment:         environment,
		EnvironmentImageURL: environmentImageURL,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 코드 충돌 시 재생성
	for {
		code := generateRoomCode()
		if _, exists := s.rooms[code]; !exists {
			room.ID = code
			break
		}
	}
	s.rooms[room.ID] = &entry{room: room}

	return room
}

// GetRoom 룸 조회
func (s *Store) GetRoom(id string) (*models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	return e.room, true
}

// WithRoom 룸별 뮤텍스를 잡고 fn을 실행한다
// 같은 룸에 대한 이벤트 처리를 직렬화하는 유일한 진입점
func (s *Store) WithRoom(id string, fn func(*models.Room) error) error {
	s.mu.RLock()
	e, ok := s.rooms[id]
	s.mu.RUnlock()

	if !ok {
		return service.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.room)
}

// JoinRoom 빈 슬롯에 플레이어 배정 (player1 우선, 선착순 고정)
func (s *Store) JoinRoom(id, connID, username string) (*models.PlayerConnection, error) {
	var player *models.PlayerConnection

	err := s.WithRoom(id, func(room *models.Room) error {
		if room.IsFull() {
			return service.ErrRoomFull
		}

		player = &models.PlayerConnection{
			ConnectionID: connID,
			PlayerID:     uuid.New().String(),
			Username:     username,
		}

		if room.Players.Player1 == nil {
			room.Players.Player1 = player
		} else {
			room.Players.Player2 = player
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return player, nil
}

// IsRoomFull 양쪽 슬롯 점유 여부
func (s *Store) IsRoomFull(id string) bool {
	full := false
	_ = s.WithRoom(id, func(room *models.Room) error {
		full = room.IsFull()
		return nil
	})
	return full
}

// SetRoomState 상태 무조건 기록. 전이 전제조건 검증은 호출자 책임
func (s *Store) SetRoomState(id string, state models.RoomState) {
	_ = s.WithRoom(id, func(room *models.Room) error {
		room.State = state
		return nil
	})
}

// GetPlayerSlot 연결 ID가 배정된 슬롯 조회
func (s *Store) GetPlayerSlot(id, connID string) (models.PlayerSlot, bool) {
	var slot models.PlayerSlot
	found := false
	_ = s.WithRoom(id, func(room *models.Room) error {
		if p := room.Players.Player1; p != nil && p.ConnectionID == connID {
			slot, found = models.SlotPlayer1, true
		} else if p := room.Players.Player2; p != nil && p.ConnectionID == connID {
			slot, found = models.SlotPlayer2, true
		}
		return nil
	})
	return slot, found
}

// GetPlayerByConnectionID 연결 ID로 플레이어 조회
func (s *Store) GetPlayerByConnectionID(id, connID string) (*models.PlayerConnection, bool) {
	var player *models.PlayerConnection
	_ = s.WithRoom(id, func(room *models.Room) error {
		if p := room.Players.Player1; p != nil && p.ConnectionID == connID {
			player = p
		} else if p := room.Players.Player2; p != nil && p.ConnectionID == connID {
			player = p
		}
		return nil
	})
	return player, player != nil
}

// FindRoomByConnectionID 연결이 참가 중인 룸 탐색 (disconnect 처리용)
func (s *Store) FindRoomByConnectionID(connID string) (*models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.rooms {
		room := e.room
		if room.HostConnectionID == connID {
			return room, true
		}
		if p := room.Players.Player1; p != nil && p.ConnectionID == connID {
			return room, true
		}
		if p := room.Players.Player2; p != nil && p.ConnectionID == connID {
			return room, true
		}
	}
	return nil, false
}

// RemoveRoom 룸 제거
func (s *Store) RemoveRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Count 현재 룸 수
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Start 만료 룸 청소 루프 시작
func (s *Store) Start() {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return
	}
	s.running = true
	s.runMu.Unlock()

	s.logger.Info("Starting room expiry sweeper", zap.Duration("interval", s.sweepInterval))

	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop 청소 루프 중지
func (s *Store) Stop() {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return
	}
	s.running = false
	s.runMu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("Room expiry sweeper stopped")
}

// sweepLoop 주기적으로 만료 룸 수거
func (s *Store) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweepExpired()
		}
	}
}

func (s *Store) sweepExpired() {
	now := time.Now()

	s.mu.Lock()
	var expired []string
	for id, e := range s.rooms {
		if e.room.IsExpired(now) {
			expired = append(expired, id)
			delete(s.rooms, id)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.Info("Swept expired rooms",
			zap.Int("count", len(expired)),
			zap.Strings("roomIds", expired))
	}
}

func generateRoomCode() string {
	code := make([]byte, models.RoomCodeLength)
	max := big.NewInt(int64(len(roomCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 실패는 복구 불가
			panic(err)
		}
		code[i] = roomCodeCharset[n.Int64()]
	}
	return string(code)
}
