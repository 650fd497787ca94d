package hub

import (
	"context"

	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// Connect registers a connection under an event code. Outbox receives
// every payload broadcast to the room; the hub closes it on disconnect.
type Connect struct {
	Code   string
	ConnID string
	Outbox chan []byte
	Reply  chan struct{} // optional; signalled once registered
}

type Disconnect struct {
	Code   string
	ConnID string
}

// Broadcast delivers Payload to every connection in the room except Except.
type Broadcast struct {
	Code    string
	Payload []byte
	Except  string
}

type RoomSize struct {
	Code  string
	Reply chan int
}

type RoomCount struct {
	Reply chan int
}

type ShutdownHub struct{}

func (Connect) isHubMsg()     {}
func (Disconnect) isHubMsg()  {}
func (Broadcast) isHubMsg()   {}
func (RoomSize) isHubMsg()    {}
func (RoomCount) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

// Hub owns the room registry. All registry state lives in the loop
// goroutine; callers talk to it through the inbox.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has shut down and closed every outbox.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) send(m HubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Connect registers a connection and waits until it is in the room.
func (h *Hub) Connect(code, connID string, outbox chan []byte) bool {
	reply := make(chan struct{}, 1)
	if !h.send(Connect{Code: code, ConnID: connID, Outbox: outbox, Reply: reply}) {
		return false
	}
	select {
	case <-reply:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) Disconnect(code, connID string) {
	h.send(Disconnect{Code: code, ConnID: connID})
}

// Publish sends payload to every connection of the room.
func (h *Hub) Publish(code string, payload []byte) {
	h.send(Broadcast{Code: code, Payload: payload})
}

// Relay sends payload to every connection of the room except the sender.
func (h *Hub) Relay(code, from string, payload []byte) {
	h.send(Broadcast{Code: code, Payload: payload, Except: from})
}

func (h *Hub) RoomSize(code string) int {
	reply := make(chan int, 1)
	if !h.send(RoomSize{Code: code, Reply: reply}) {
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-h.ctx.Done():
		return 0
	}
}

func (h *Hub) Rooms() int {
	reply := make(chan int, 1)
	if !h.send(RoomCount{Reply: reply}) {
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-h.ctx.Done():
		return 0
	}
}

// Shutdown closes every outbox and stops the loop.
func (h *Hub) Shutdown() {
	h.send(ShutdownHub{})
	<-h.done
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				rm := h.rooms[msg.Code]
				if rm == nil {
					rm = newRoom(msg.Code)
					h.rooms[msg.Code] = rm
				}
				rm.join(msg.ConnID, msg.Outbox)
				if msg.Reply != nil {
					msg.Reply <- struct{}{}
				}

			case Disconnect:
				if rm := h.rooms[msg.Code]; rm != nil {
					rm.leave(msg.ConnID)
					h.dropIfEmpty(rm)
				}

			case Broadcast:
				rm := h.rooms[msg.Code]
				if rm == nil {
					break
				}
				for _, id := range rm.broadcast(msg.Payload, msg.Except) {
					h.log.Warn("dropping slow connection", zap.String("code", msg.Code), zap.String("conn_id", id))
				}
				h.dropIfEmpty(rm)

			case RoomSize:
				n := 0
				if rm := h.rooms[msg.Code]; rm != nil {
					n = len(rm.conns)
				}
				msg.Reply <- n

			case RoomCount:
				msg.Reply <- len(h.rooms)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) dropIfEmpty(rm *room) {
	if len(rm.conns) == 0 {
		delete(h.rooms, rm.code)
	}
}

func (h *Hub) shutdown() {
	for code, rm := range h.rooms {
		rm.closeAll()
		delete(h.rooms, code)
	}
	h.cancel()
}
