package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Metrics 记录进程运行期的关键指标（用于监控与调试）
type Metrics struct {
	RoomsCreated      int64 // 创建的房间数（不含默认房间）
	RoomsDeleted      int64 // 被回收的空房间数
	JoinsAccepted     int64 // 成功入房数
	JoinsRejected     int64 // 被拒绝的入房数（满员/已开局）
	MovesApplied      int64 // 生效的移动数
	MovesRejected     int64 // 因撞墙或越界被拒绝的移动数
	PelletsCollected  int64 // 被吃掉的豆子数
	PowerUpsSpawned   int64 // 刷出的道具数
	BroadcastsDropped int64 // 因发送队列满被丢弃的消息数
}

// Stats 进程级指标单例
var Stats = &Metrics{}

func (m *Metrics) IncRoomCreated() { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *Metrics) IncRoomDeleted() { atomic.AddInt64(&m.RoomsDeleted, 1) }
func (m *Metrics) IncJoinAccepted() { atomic.AddInt64(&m.JoinsAccepted, 1) }
func (m *Metrics) IncJoinRejected() { atomic.AddInt64(&m.JoinsRejected, 1) }
func (m *Metrics) IncMoveApplied() { atomic.AddInt64(&m.MovesApplied, 1) }
func (m *Metrics) IncMoveRejected() { atomic.AddInt64(&m.MovesRejected, 1) }
func (m *Metrics) IncPelletCollected() { atomic.AddInt64(&m.PelletsCollected, 1) }
func (m *Metrics) IncPowerUpSpawned() { atomic.AddInt64(&m.PowerUpsSpawned, 1) }
func (m *Metrics) IncBroadcastDropped() { atomic.AddInt64(&m.BroadcastsDropped, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"rooms_created":      atomic.LoadInt64(&m.RoomsCreated),
		"rooms_deleted":      atomic.LoadInt64(&m.RoomsDeleted),
		"joins_accepted":     atomic.LoadInt64(&m.JoinsAccepted),
		"joins_rejected":     atomic.LoadInt64(&m.JoinsRejected),
		"moves_applied":      atomic.LoadInt64(&m.MovesApplied),
		"moves_rejected":     atomic.LoadInt64(&m.MovesRejected),
		"pellets_collected":  atomic.LoadInt64(&m.PelletsCollected),
		"power_ups_spawned":  atomic.LoadInt64(&m.PowerUpsSpawned),
		"broadcasts_dropped": atomic.LoadInt64(&m.BroadcastsDropped),
	}
}

// HandleMetrics 输出运行指标与当前房间概况
// GET /metrics
func (rm *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"rooms":   rm.RoomsList(),
		"metrics": Stats.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
