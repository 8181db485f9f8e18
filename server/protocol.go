package server

// EventSender 引擎与注册表对外发送的唯一通道抽象：
// 把一条命名事件投递给单个客户端，不等待确认、不产生背压
type EventSender interface {
	Send(event string, payload any)
}

// 服务端下行事件名
const (
	EvJoinSuccess      = "join_success"
	EvJoinFailed       = "join_failed"
	EvPlayerJoined     = "player_joined"
	EvPlayerLeft       = "player_left"
	EvGameStarted      = "game_started"
	EvPlayerMoved      = "player_moved"
	EvPelletCollected  = "pellet_collected"
	EvPowerUpSpawned   = "power_up_spawned"
	EvPowerUpCollected = "power_up_collected" // 预留：拾取链路尚未接入，引擎目前不会发出
	EvGameOver         = "game_over"
	EvGameRestarted    = "game_restarted"
	EvRoomsList        = "rooms_list"
	EvRoomCreated      = "room_created"
)

// 客户端上行事件名
const (
	MsgJoinGame    = "join_game"
	MsgCreateRoom  = "create_room"
	MsgListRooms   = "list_rooms"
	MsgPlayerMove  = "player_move"
	MsgStartGame   = "start_game"
	MsgRestartGame = "restart_game"
	MsgLeaveGame   = "leave_game"
)

// ClientMessage 上行消息信封（WebSocket 文本帧）
// 示例：{"type":"player_move","direction":"up"}
type ClientMessage struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	RoomName  string `json:"roomName,omitempty"`
	RoomCode  string `json:"roomCode,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// ServerMessage 下行消息信封
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// PowerUp 已落地、尚未被拾取的道具
type PowerUp struct {
	Type      PowerUpType `json:"type"`
	Position  Position    `json:"position"`
	SpawnTime int64       `json:"spawnTime"`
}

// RoomInfo 大厅列表里一个房间的摘要
type RoomInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsStarted   bool   `json:"isStarted"`
	IsGameOver  bool   `json:"isGameOver"`
}

// ClientGameState 发给客户端的完整对局快照
type ClientGameState struct {
	Players          []ClientPlayer     `json:"players"`
	Maze             Maze               `json:"maze"`
	Pellets          []string           `json:"pellets"`
	PowerUps         map[string]PowerUp `json:"powerUps"`
	Score            int                `json:"score"`
	PelletsRemaining int                `json:"pelletsRemaining"`
	CanStart         bool               `json:"canStart"`
}

type JoinSuccessPayload struct {
	PlayerID  string          `json:"player_id"`
	Role      Role            `json:"role"`
	GameState ClientGameState `json:"game_state"`
}

type JoinFailedPayload struct {
	Reason string `json:"reason"`
}

type PlayerJoinedPayload struct {
	Player   ClientPlayer `json:"player"`
	CanStart bool         `json:"can_start"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type PlayerMovedPayload struct {
	PlayerID         string `json:"player_id"`
	X                int    `json:"x"`
	Y                int    `json:"y"`
	Direction        string `json:"direction"`
	Score            int    `json:"score"`
	PelletsRemaining int    `json:"pellets_remaining"`
	PelletCollected  bool   `json:"pellet_collected"`
}

type PelletCollectedPayload struct {
	Position         string `json:"position"`
	Score            int    `json:"score"`
	PelletsRemaining int    `json:"pellets_remaining"`
}

type PowerUpSpawnedPayload struct {
	Type     PowerUpType `json:"type"`
	Position string      `json:"position"`
}

// PowerUpCollectedPayload 预留的拾取广播载荷，与 EvPowerUpCollected 配套
type PowerUpCollectedPayload struct {
	PlayerID string      `json:"player_id"`
	Type     PowerUpType `json:"type"`
	Position string      `json:"position"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
	Score  int    `json:"score"`
}

type GameRestartedPayload struct {
	GameState ClientGameState `json:"game_state"`
}

type RoomsListPayload struct {
	Rooms []RoomInfo `json:"rooms"`
}

type RoomCreatedPayload struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}
