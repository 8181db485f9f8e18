package server

// PlayerID 表示一条连接（玩家）的唯一标识，进程内任一时刻唯一
type PlayerID string

// Direction 移动方向，封闭枚举；其他取值在边界处直接拒绝
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// ParseDirection 校验客户端传入的方向字符串
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirUp, DirDown, DirLeft, DirRight:
		return Direction(s), true
	default:
		return "", false
	}
}

// Offset 返回沿该方向移动一格后的坐标
func (d Direction) Offset(p Position) Position {
	switch d {
	case DirUp:
		p.Y--
	case DirDown:
		p.Y++
	case DirLeft:
		p.X--
	case DirRight:
		p.X++
	}
	return p
}

// Role 玩家角色，加入时分配后不可变
type Role string

const (
	RolePacman Role = "pacman"
	RoleGhost  Role = "ghost"
)

// 幽灵按加入顺序取色，4 色用完后不再分配
var ghostColors = []string{"red", "pink", "cyan", "orange"}

// PowerUpType 道具种类
type PowerUpType string

const (
	PowerUpSpeedBoost       PowerUpType = "speed_boost"
	PowerUpInvincibility    PowerUpType = "invincibility"
	PowerUpPelletMultiplier PowerUpType = "pellet_multiplier"
)

var powerUpTypes = []PowerUpType{PowerUpSpeedBoost, PowerUpInvincibility, PowerUpPelletMultiplier}

// PowerUpEffect 附着在玩家身上的限时效果槽，nil 表示未持有
type PowerUpEffect struct {
	Type    PowerUpType `json:"type"`
	EndTime int64       `json:"endTime"`
}

// PowerUpSlots 三个互相独立的效果槽
type PowerUpSlots struct {
	SpeedBoost       *PowerUpEffect `json:"speedBoost"`
	Invincibility    *PowerUpEffect `json:"invincibility"`
	PelletMultiplier *PowerUpEffect `json:"pelletMultiplier"`
}

// Player 房间内的玩家实体（服务端权威状态），归属其所在房间的引擎独占
type Player struct {
	ID         PlayerID
	Name       string
	Role       Role
	GhostColor string // 仅幽灵持有，第 5 名幽灵起为空
	Position   Position
	Direction  Direction
	Speed      float64 // 角色预设速度，当前不参与移动节奏判定
	PowerUps   PowerUpSlots
	IsAlive    bool

	Conn EventSender
}

// ClientPlayer 广播给客户端的玩家公开视图
type ClientPlayer struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Role       Role    `json:"role"`
	GhostColor *string `json:"ghostColor"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Direction  string  `json:"direction"`
}

// clientView 构造玩家的公开视图
func (p *Player) clientView() ClientPlayer {
	var color *string
	if p.GhostColor != "" {
		c := p.GhostColor
		color = &c
	}
	return ClientPlayer{
		ID:         string(p.ID),
		Name:       p.Name,
		Role:       p.Role,
		GhostColor: color,
		X:          p.Position.X,
		Y:          p.Position.Y,
		Direction:  string(p.Direction),
	}
}
