package server

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRoomID 进程启动时预建的默认房间，清空后不销毁
const DefaultRoomID = "room_default"

const defaultRoomName = "Default Room"

// RoomManager 管理全部房间的生命周期，并把连接路由到所属房间的引擎。
// 进程级唯一，在启动时构造一次；所有可变状态只经由其方法修改
type RoomManager struct {
	mu          sync.RWMutex
	rooms       map[string]*Game
	roomNames   map[string]string   // roomID -> 房主自定义房名（即入房口令）
	playerRooms map[PlayerID]string // 连接 -> roomID

	powerUpInterval time.Duration // 新房间的道具刷新周期
}

// NewRoomManager 构造房间管理器并预建默认房间
// powerUpInterval <= 0 时使用默认刷新周期
func NewRoomManager(powerUpInterval time.Duration) *RoomManager {
	if powerUpInterval <= 0 {
		powerUpInterval = DefaultPowerUpInterval
	}
	rm := &RoomManager{
		rooms:           make(map[string]*Game),
		roomNames:       make(map[string]string),
		playerRooms:     make(map[PlayerID]string),
		powerUpInterval: powerUpInterval,
	}
	rm.rooms[DefaultRoomID] = rm.newGame(DefaultRoomID)
	rm.roomNames[DefaultRoomID] = defaultRoomName
	Log.Infof("default room created: %s", DefaultRoomID)
	return rm
}

func (rm *RoomManager) newGame(roomID string) *Game {
	g := NewGame(roomID)
	g.SetPowerUpInterval(rm.powerUpInterval)
	return g
}

// CreateRoom 新建房间、记录房名、并让创建者自动入房
func (rm *RoomManager) CreateRoom(conn EventSender, id PlayerID, playerName, roomName string) {
	roomID := "room_" + uuid.NewString()

	rm.mu.Lock()
	rm.rooms[roomID] = rm.newGame(roomID)
	rm.roomNames[roomID] = roomName
	rm.mu.Unlock()
	Stats.IncRoomCreated()
	Log.Infof("room created: %s (%s) by %s", roomID, roomName, playerName)

	rm.joinRoom(conn, id, playerName, roomID)

	sendTo(conn, EvRoomCreated, RoomCreatedPayload{
		RoomID:   roomID,
		RoomName: roomName,
	})
}

// JoinRoomByCode 按口令入房："default" 或空串总是指默认房间，
// 其余口令与已存房名精确匹配，找不到即入房失败
func (rm *RoomManager) JoinRoomByCode(conn EventSender, id PlayerID, playerName, code string) {
	roomID := rm.findRoomByCode(code)
	if roomID == "" {
		sendTo(conn, EvJoinFailed, JoinFailedPayload{Reason: `Room "` + code + `" not found`})
		return
	}
	rm.joinRoom(conn, id, playerName, roomID)
}

func (rm *RoomManager) findRoomByCode(code string) string {
	if code == "" || strings.EqualFold(code, "default") {
		return DefaultRoomID
	}
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for roomID, name := range rm.roomNames {
		if name == code {
			return roomID
		}
	}
	return ""
}

func (rm *RoomManager) joinRoom(conn EventSender, id PlayerID, playerName, roomID string) {
	rm.mu.Lock()
	game, ok := rm.rooms[roomID]
	if !ok {
		rm.mu.Unlock()
		sendTo(conn, EvJoinFailed, JoinFailedPayload{Reason: "Room not found"})
		return
	}
	prev, mapped := rm.playerRooms[id]
	rm.mu.Unlock()

	// 已在别的房间则先退出，保证一条连接至多归属一个房间
	if mapped && prev != roomID {
		rm.LeaveRoom(id)
	}

	rm.mu.Lock()
	rm.playerRooms[id] = roomID
	rm.mu.Unlock()

	game.HandleJoin(conn, id, playerName)
}

// LeaveRoom 退出当前房间，房间清空且非默认房则回收
func (rm *RoomManager) LeaveRoom(id PlayerID) {
	rm.mu.Lock()
	roomID, ok := rm.playerRooms[id]
	if !ok {
		rm.mu.Unlock()
		return
	}
	game := rm.rooms[roomID]
	delete(rm.playerRooms, id)
	rm.mu.Unlock()

	if game == nil {
		return
	}
	game.HandleLeave(id)
	rm.collectIfEmpty(roomID, game)
}

// HandleDisconnect 连接断开：与主动退出同路径，只是引擎侧日志口径不同
func (rm *RoomManager) HandleDisconnect(id PlayerID) {
	rm.mu.Lock()
	roomID, ok := rm.playerRooms[id]
	if !ok {
		rm.mu.Unlock()
		return
	}
	game := rm.rooms[roomID]
	delete(rm.playerRooms, id)
	rm.mu.Unlock()

	if game == nil {
		return
	}
	game.HandleDisconnect(id)
	rm.collectIfEmpty(roomID, game)
}

func (rm *RoomManager) collectIfEmpty(roomID string, game *Game) {
	if roomID == DefaultRoomID || game.PlayerCount() > 0 {
		return
	}
	rm.mu.Lock()
	if _, ok := rm.rooms[roomID]; !ok {
		rm.mu.Unlock()
		return
	}
	delete(rm.rooms, roomID)
	delete(rm.roomNames, roomID)
	rm.mu.Unlock()
	Stats.IncRoomDeleted()
	Log.Infof("empty room deleted: %s", roomID)
}

// HandlePlayerMove 把移动请求转给所属房间；未入房的连接静默忽略
func (rm *RoomManager) HandlePlayerMove(id PlayerID, dir Direction) {
	if game := rm.gameOf(id); game != nil {
		game.HandleMove(id, dir)
	}
}

// HandleStartGame 转发开局请求
func (rm *RoomManager) HandleStartGame(id PlayerID) {
	if game := rm.gameOf(id); game != nil {
		game.HandleStart(id)
	}
}

// HandleRestartGame 转发重开请求
func (rm *RoomManager) HandleRestartGame(id PlayerID) {
	if game := rm.gameOf(id); game != nil {
		game.HandleRestart(id)
	}
}

func (rm *RoomManager) gameOf(id PlayerID) *Game {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	roomID, ok := rm.playerRooms[id]
	if !ok {
		return nil
	}
	return rm.rooms[roomID]
}

// Room 按 id 取房间引擎（管理接口使用）
func (rm *RoomManager) Room(roomID string) (*Game, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	game, ok := rm.rooms[roomID]
	return game, ok
}

// RoomsList 构建大厅展示用的房间摘要列表
func (rm *RoomManager) RoomsList() []RoomInfo {
	rm.mu.RLock()
	games := make(map[string]*Game, len(rm.rooms))
	names := make(map[string]string, len(rm.roomNames))
	for roomID, game := range rm.rooms {
		games[roomID] = game
		names[roomID] = rm.roomNames[roomID]
	}
	rm.mu.RUnlock()

	rooms := make([]RoomInfo, 0, len(games))
	for roomID, game := range games {
		name := names[roomID]
		if name == "" {
			name = "Unknown Room"
		}
		rooms = append(rooms, RoomInfo{
			ID:          roomID,
			Name:        name,
			PlayerCount: game.PlayerCount(),
			MaxPlayers:  MaxPlayers,
			IsStarted:   game.IsStarted(),
			IsGameOver:  game.IsOver(),
		})
	}
	return rooms
}

// SendRoomsList 向单个连接回发当前房间列表
func (rm *RoomManager) SendRoomsList(conn EventSender) {
	sendTo(conn, EvRoomsList, RoomsListPayload{Rooms: rm.RoomsList()})
}
