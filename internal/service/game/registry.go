package game

// Registry 按加入顺序保存房间内的玩家
type Registry struct {
	players map[string]*Player
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*Player),
		order:   make([]string, 0),
	}
}

func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) Get(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Add 添加新玩家，ID 已存在时返回 false
func (r *Registry) Add(p *Player) bool {
	if _, exists := r.players[p.ID]; exists {
		return false
	}

	r.players[p.ID] = p
	r.order = append(r.order, p.ID)

	return true
}

// Reconnect 按 ID 重连：替换连接句柄并标记在线，name 为空时保留原名
func (r *Registry) Reconnect(id string, conn *Conn, name string) (*Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return nil, false
	}

	p.Conn = conn
	p.Connected = true

	if name != "" {
		p.Name = name
	}

	return p, true
}

// Disconnect 只标记离线，不删除玩家记录
func (r *Registry) Disconnect(id string) (*Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return nil, false
	}

	p.Connected = false
	p.Conn = nil

	return p, true
}

func (r *Registry) FindByConn(conn *Conn) (*Player, bool) {
	if conn == nil {
		return nil, false
	}

	for _, id := range r.order {
		if p := r.players[id]; p.Conn == conn {
			return p, true
		}
	}

	return nil, false
}

func (r *Registry) Remove(id string) (*Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return nil, false
	}

	delete(r.players, id)

	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return p, true
}

func (r *Registry) List() []*Player {
	return r.filter(func(*Player) bool { return true })
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *Registry) ConnectedHumans() []*Player {
	return r.filter(func(p *Player) bool { return !p.Bot && p.Connected })
}

func (r *Registry) ConnectedPlayers() []*Player {
	return r.filter(func(p *Player) bool { return p.Connected })
}

func (r *Registry) Humans() []*Player {
	return r.filter(func(p *Player) bool { return !p.Bot })
}

func (r *Registry) Bots() []*Player {
	return r.filter(func(p *Player) bool { return p.Bot })
}

func (r *Registry) filter(keep func(*Player) bool) []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}
