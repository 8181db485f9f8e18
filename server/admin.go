package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// HandleAdminConfig 提供房间规则的读取与更新（热更新）
// GET /admin/config?room=room_default  返回当前配置
// POST /admin/config?room=room_default 以 JSON 载荷更新部分字段
func (rm *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = DefaultRoomID
	}
	game, ok := rm.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	type cfg struct {
		PowerUpIntervalSec *int `json:"powerUpIntervalSec,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		sec := int(game.PowerUpInterval() / time.Second)
		cur := cfg{PowerUpIntervalSec: &sec}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cur)
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.PowerUpIntervalSec != nil && *body.PowerUpIntervalSec > 0 {
			game.SetPowerUpInterval(time.Duration(*body.PowerUpIntervalSec) * time.Second)
			Log.Infof("config updated: room=%s powerUpIntervalSec=%d", roomID, *body.PowerUpIntervalSec)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}
