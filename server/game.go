package server

import (
	"math/rand"
	"sync"
	"time"
)

const (
	// MaxPlayers 每个房间的人数上限：1 名吃豆人 + 最多 4 名幽灵
	MaxPlayers = 5
	// MinPlayersToStart 开局所需的最少人数
	MinPlayersToStart = 2

	// DefaultPowerUpInterval 道具刷新周期
	DefaultPowerUpInterval = 30 * time.Second

	pelletScore   = 10
	ghostEatScore = 200

	pacmanSpeed = 2.0
	ghostSpeed  = 1.8
)

const (
	WinnerPacman = "pacman"
	WinnerGhosts = "ghosts"
)

// 吃豆人固定出生点与幽灵按加入顺序使用的出生点
var (
	pacmanSpawn = Position{X: 1, Y: 1}
	ghostSpawns = []Position{
		{X: 18, Y: 1},
		{X: 1, Y: 17},
		{X: 18, Y: 17},
		{X: 9, Y: 9},
	}
	ghostSpawnFallback = Position{X: 9, Y: 9}
)

// GameState 一个房间的权威对局状态
type GameState struct {
	IsStarted        bool
	IsGameOver       bool
	Winner           string // WinnerPacman / WinnerGhosts，未分出为空
	Score            int
	PelletsRemaining int
	Maze             Maze
	Pellets          map[string]struct{}
	PowerUps         map[string]PowerUp
	StartTime        int64
}

// Game 房间级游戏引擎：独占持有本房间的玩家表与对局状态，
// 所有操作在房间锁内完成，彼此互斥（事件到达顺序即处理顺序）
type Game struct {
	roomID string

	mu      sync.Mutex
	players map[PlayerID]*Player
	state   *GameState

	// 道具刷新协程的停止通道；nil 表示未在运行
	spawnStop     chan struct{}
	spawnInterval time.Duration

	rng *rand.Rand
}

// NewGame 创建一个处于等待开局状态的房间引擎
func NewGame(roomID string) *Game {
	return &Game{
		roomID:        roomID,
		players:       make(map[PlayerID]*Player),
		state:         newGameState(),
		spawnInterval: DefaultPowerUpInterval,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func newGameState() *GameState {
	maze := GenerateMaze()
	pellets := GeneratePellets(maze)
	return &GameState{
		Maze:             maze,
		Pellets:          pellets,
		PelletsRemaining: len(pellets),
		PowerUps:         make(map[string]PowerUp),
	}
}

// HandleJoin 处理入房请求
// 拒绝条件：重复加入（静默幂等）、满员、对局已开始
func (g *Game) HandleJoin(conn EventSender, id PlayerID, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.players[id]; ok {
		Log.Infof("player %s attempted to join room %s again, ignoring duplicate request", id, g.roomID)
		return
	}
	if len(g.players) >= MaxPlayers {
		Stats.IncJoinRejected()
		sendTo(conn, EvJoinFailed, JoinFailedPayload{Reason: "Game is full"})
		return
	}
	if g.state.IsStarted {
		Stats.IncJoinRejected()
		sendTo(conn, EvJoinFailed, JoinFailedPayload{Reason: "Game already started"})
		return
	}

	role := RoleGhost
	if len(g.players) == 0 {
		role = RolePacman
	}
	var color string
	if role == RoleGhost {
		if i := len(g.players) - 1; i < len(ghostColors) {
			color = ghostColors[i]
		}
	}
	speed := ghostSpeed
	if role == RolePacman {
		speed = pacmanSpeed
	}

	p := &Player{
		ID:         id,
		Name:       name,
		Role:       role,
		GhostColor: color,
		Position:   g.spawnPosition(role),
		Direction:  DirRight,
		Speed:      speed,
		IsAlive:    true,
		Conn:       conn,
	}
	g.players[id] = p
	Stats.IncJoinAccepted()

	sendTo(conn, EvJoinSuccess, JoinSuccessPayload{
		PlayerID:  string(id),
		Role:      role,
		GameState: g.clientGameState(),
	})
	g.broadcast(EvPlayerJoined, PlayerJoinedPayload{
		Player:   p.clientView(),
		CanStart: g.canStart(),
	})
	Log.Infof("player %s joined room %s as %s (%s)", name, g.roomID, role, id)
}

// HandleMove 处理一次单格移动：越界与撞墙静默拒绝；
// 吃豆人吃到豆子先结算得分（吃完最后一颗立即判胜并返回），再做碰撞检测
func (g *Game) HandleMove(id PlayerID, dir Direction) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[id]
	if !ok || !g.state.IsStarted || g.state.IsGameOver {
		return
	}

	next := dir.Offset(p.Position)
	if !g.state.Maze.IsPath(next) {
		Stats.IncMoveRejected()
		return
	}

	p.Position = next
	p.Direction = dir
	Stats.IncMoveApplied()

	pelletCollected := false
	if p.Role == RolePacman {
		key := next.Key()
		if _, ok := g.state.Pellets[key]; ok {
			delete(g.state.Pellets, key)
			g.state.PelletsRemaining--
			pelletCollected = true
			Stats.IncPelletCollected()

			multiplier := 1
			if p.PowerUps.PelletMultiplier != nil {
				multiplier = 2
			}
			g.state.Score += pelletScore * multiplier

			g.broadcast(EvPelletCollected, PelletCollectedPayload{
				Position:         key,
				Score:            g.state.Score,
				PelletsRemaining: g.state.PelletsRemaining,
			})

			if g.state.PelletsRemaining == 0 {
				g.endGame(WinnerPacman)
				return
			}
		}
	}

	g.checkCollisions()

	g.broadcast(EvPlayerMoved, PlayerMovedPayload{
		PlayerID:         string(id),
		X:                p.Position.X,
		Y:                p.Position.Y,
		Direction:        string(p.Direction),
		Score:            g.state.Score,
		PelletsRemaining: g.state.PelletsRemaining,
		PelletCollected:  pelletCollected,
	})
}

// checkCollisions 吃豆人与幽灵同格时的结算：
// 无敌状态下幽灵被吃回出生点并加分，否则幽灵获胜并立即终局
func (g *Game) checkCollisions() {
	var pacman *Player
	for _, p := range g.players {
		if p.Role == RolePacman {
			pacman = p
			break
		}
	}
	if pacman == nil {
		return
	}

	for _, ghost := range g.players {
		if ghost.Role != RoleGhost {
			continue
		}
		if ghost.Position != pacman.Position {
			continue
		}
		if pacman.PowerUps.Invincibility != nil {
			ghost.Position = g.spawnPosition(RoleGhost)
			g.state.Score += ghostEatScore
		} else {
			g.endGame(WinnerGhosts)
			return
		}
	}
}

// HandleStart 仅吃豆人可开局，且需满足人数与未开局前置条件
func (g *Game) HandleStart(id PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[id]
	if !ok || p.Role != RolePacman || !g.canStart() {
		return
	}

	g.state.IsStarted = true
	g.state.StartTime = time.Now().UnixMilli()
	g.state.PelletsRemaining = len(g.state.Pellets)

	g.broadcast(EvGameStarted, nil)
	g.startSpawnerLocked()
	Log.Infof("game started in room %s", g.roomID)
}

// HandleRestart 仅吃豆人可重开：重建对局状态并把所有玩家归位，不清出房间
func (g *Game) HandleRestart(id PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[id]
	if !ok || p.Role != RolePacman {
		return
	}

	Log.Infof("restarting game in room %s", g.roomID)
	g.state = newGameState()
	for _, pl := range g.players {
		pl.Position = g.spawnPosition(pl.Role)
		pl.Direction = DirRight
		pl.PowerUps = PowerUpSlots{}
		pl.IsAlive = true
	}
	g.stopSpawnerLocked()

	g.broadcast(EvGameRestarted, GameRestartedPayload{GameState: g.clientGameState()})
}

// HandleLeave 主动退出
func (g *Game) HandleLeave(id PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removePlayerLocked(id, "left the game")
}

// HandleDisconnect 连接断开，处理路径与退出一致，仅日志口径不同
func (g *Game) HandleDisconnect(id PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removePlayerLocked(id, "disconnected")
}

func (g *Game) removePlayerLocked(id PlayerID, cause string) {
	p, ok := g.players[id]
	if !ok {
		return
	}

	delete(g.players, id)
	g.broadcast(EvPlayerLeft, PlayerLeftPayload{PlayerID: string(id)})

	// 吃豆人中途离场，剩余幽灵直接获胜
	if p.Role == RolePacman && g.state.IsStarted && !g.state.IsGameOver {
		g.endGame(WinnerGhosts)
	}

	if len(g.players) == 0 {
		g.state = newGameState()
		g.stopSpawnerLocked()
		Log.Infof("room %s empty, game reset", g.roomID)
	}
	Log.Infof("player %s (%s) %s in room %s", p.Name, id, cause, g.roomID)
}

// endGame 幂等的终局迁移：落winner、停道具刷新、广播终局
func (g *Game) endGame(winner string) {
	if g.state.IsGameOver {
		return
	}
	g.state.IsGameOver = true
	g.state.Winner = winner
	g.stopSpawnerLocked()

	g.broadcast(EvGameOver, GameOverPayload{
		Winner: winner,
		Score:  g.state.Score,
	})
	Log.Infof("game ended in room %s, winner: %s, score: %d", g.roomID, winner, g.state.Score)
}

// startSpawnerLocked 启动道具刷新协程，保证同一房间至多一个在跑
func (g *Game) startSpawnerLocked() {
	g.stopSpawnerLocked()
	stop := make(chan struct{})
	g.spawnStop = stop
	go g.runSpawner(stop, g.spawnInterval)
}

// stopSpawnerLocked 幂等取消：未在运行时调用是安全的
func (g *Game) stopSpawnerLocked() {
	if g.spawnStop != nil {
		close(g.spawnStop)
		g.spawnStop = nil
	}
}

func (g *Game) runSpawner(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.spawnPowerUp()
		}
	}
}

// spawnPowerUp 定时落一个随机种类的道具到随机通路格
// （可与已有道具同格，与原始规则一致）
func (g *Game) spawnPowerUp() {
	g.mu.Lock()
	defer g.mu.Unlock()

	// 计时器触发与拿锁之间对局可能已经结束
	if !g.state.IsStarted || g.state.IsGameOver {
		return
	}

	kind := powerUpTypes[g.rng.Intn(len(powerUpTypes))]
	cells := PathCells(g.state.Maze)
	if len(cells) == 0 {
		return
	}
	pos := cells[g.rng.Intn(len(cells))]
	key := pos.Key()

	g.state.PowerUps[key] = PowerUp{
		Type:      kind,
		Position:  pos,
		SpawnTime: time.Now().UnixMilli(),
	}
	Stats.IncPowerUpSpawned()

	g.broadcast(EvPowerUpSpawned, PowerUpSpawnedPayload{
		Type:     kind,
		Position: key,
	})
}

// spawnPosition 角色出生点：吃豆人固定，幽灵按当前人数取预设点位
func (g *Game) spawnPosition(role Role) Position {
	if role == RolePacman {
		return pacmanSpawn
	}
	if i := len(g.players) - 1; i >= 0 && i < len(ghostSpawns) {
		return ghostSpawns[i]
	}
	return ghostSpawnFallback
}

func (g *Game) canStart() bool {
	return len(g.players) >= MinPlayersToStart && !g.state.IsStarted
}

// broadcast 把事件写入房间内每个成员的发送队列（发后即忘）
func (g *Game) broadcast(event string, payload any) {
	for _, p := range g.players {
		sendTo(p.Conn, event, payload)
	}
}

func sendTo(conn EventSender, event string, payload any) {
	if conn != nil {
		conn.Send(event, payload)
	}
}

// clientGameState 构造发给客户端的对局快照
func (g *Game) clientGameState() ClientGameState {
	players := make([]ClientPlayer, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, p.clientView())
	}
	pellets := make([]string, 0, len(g.state.Pellets))
	for key := range g.state.Pellets {
		pellets = append(pellets, key)
	}
	powerUps := make(map[string]PowerUp, len(g.state.PowerUps))
	for key, pu := range g.state.PowerUps {
		powerUps[key] = pu
	}
	return ClientGameState{
		Players:          players,
		Maze:             g.state.Maze,
		Pellets:          pellets,
		PowerUps:         powerUps,
		Score:            g.state.Score,
		PelletsRemaining: g.state.PelletsRemaining,
		CanStart:         g.canStart(),
	}
}

// PlayerCount 当前人数，供注册表构建大厅列表
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// IsStarted 对局是否已开始
func (g *Game) IsStarted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.IsStarted
}

// IsOver 对局是否已结束
func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.IsGameOver
}

// PowerUpInterval 当前道具刷新周期（管理接口读取）
func (g *Game) PowerUpInterval() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spawnInterval
}

// SetPowerUpInterval 热更新道具刷新周期；对局进行中则立即按新周期重启刷新
func (g *Game) SetPowerUpInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spawnInterval = d
	if g.spawnStop != nil {
		g.startSpawnerLocked()
	}
}
