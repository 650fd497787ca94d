package hub

// room is the set of connections watching one event. It is only touched from
// the hub loop.
type room struct {
	code  string
	conns map[string]chan []byte
}

func newRoom(code string) *room {
	return &room{code: code, conns: make(map[string]chan []byte)}
}

func (r *room) join(id string, outbox chan []byte) {
	if old, ok := r.conns[id]; ok && old != outbox {
		close(old)
	}
	r.conns[id] = outbox
}

func (r *room) leave(id string) {
	if ch, ok := r.conns[id]; ok {
		close(ch) // no more payloads for this connection
		delete(r.conns, id)
	}
}

// broadcast enqueues payload on every outbox but except's. A connection whose
// outbox is full is disconnected; their ids are returned.
func (r *room) broadcast(payload []byte, except string) []string {
	var dropped []string
	for id, ch := range r.conns {
		if id == except {
			continue
		}
		select {
		case ch <- payload:
			//ok
		default:
			close(ch)
			delete(r.conns, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

func (r *room) closeAll() {
	for id, ch := range r.conns {
		close(ch)
		delete(r.conns, id)
	}
}
