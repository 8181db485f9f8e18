package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Send 实现 EventSender：把命名事件编码后压入发送队列
func (c *ClientConn) Send(event string, payload any) {
	b, err := json.Marshal(ServerMessage{Type: event, Data: payload})
	if err != nil {
		Log.Errorf("marshal %s event: %v", event, err)
		return
	}
	c.enqueue(b)
}

// enqueue 非阻塞入队，满则丢弃（慢接收方不能拖住广播方）
func (c *ClientConn) enqueue(b []byte) {
	if c.send == nil {
		return
	}
	select {
	case c.send <- b:
	default:
		Stats.IncBroadcastDropped()
	}
}

// Close 关闭底层连接与发送队列
func (c *ClientConn) Close() {
	if c.send != nil {
		// 关闭发送通道以结束写协程
		close(c.send)
		c.send = nil
	}
	_ = c.ws.Close()
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump 读取并分发客户端消息；读错误（含断线）触发断连清理
func (c *ClientConn) readPump(rm *RoomManager, id PlayerID) {
	// 先出房再关连接：HandleDisconnect 返回后该连接不会再收到广播，
	// 此时关闭发送队列（从而结束写协程）才是安全的
	defer func() {
		rm.HandleDisconnect(id)
		c.Close()
	}()
	c.ws.SetReadLimit(1 << 20) // 1MB
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			Log.Infof("client disconnected: %s (%v)", id, err)
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		c.dispatch(rm, id, msg)
	}
}

// dispatch 按消息类型路由到注册表；任一动作内部的 panic 不得影响进程
// 与其他房间，拦截后仅记录日志
func (c *ClientConn) dispatch(rm *RoomManager, id PlayerID, msg ClientMessage) {
	defer func() {
		if r := recover(); r != nil {
			Log.Errorf("panic handling %s from %s: %v", msg.Type, id, r)
		}
	}()

	switch msg.Type {
	case MsgJoinGame:
		name := strings.TrimSpace(msg.Name)
		if name == "" {
			c.Send(EvJoinFailed, JoinFailedPayload{Reason: "Name is required"})
			return
		}
		rm.JoinRoomByCode(c, id, name, strings.TrimSpace(msg.RoomCode))
	case MsgCreateRoom:
		name := strings.TrimSpace(msg.Name)
		roomName := strings.TrimSpace(msg.RoomName)
		if name == "" || roomName == "" {
			c.Send(EvJoinFailed, JoinFailedPayload{Reason: "Name and room name are required"})
			return
		}
		rm.CreateRoom(c, id, name, roomName)
	case MsgListRooms:
		rm.SendRoomsList(c)
	case MsgPlayerMove:
		if dir, ok := ParseDirection(msg.Direction); ok {
			rm.HandlePlayerMove(id, dir)
		}
	case MsgStartGame:
		rm.HandleStartGame(id)
	case MsgRestartGame:
		rm.HandleRestartGame(id)
	case MsgLeaveGame:
		rm.LeaveRoom(id)
	default:
		// 未知消息类型直接丢弃
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：连接 id 由服务端生成，入房等后续动作走消息分发
func (rm *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Errorf("upgrade error: %v", err)
		return
	}

	id := PlayerID(uuid.NewString())
	client := NewClientConn(ws)
	Log.Infof("client connected: %s", id)

	go client.writePump()
	client.readPump(rm, id)
}
