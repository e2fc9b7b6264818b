package game

import (
	"sync"
)

type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Host        bool   `json:"host"`
	Connected   bool   `json:"connected"`
	Bot         bool   `json:"bot"`
	AvatarStyle string `json:"avatarStyle"`

	// 机器人没有连接
	Conn *Conn `json:"-"`
}

// Conn 是玩家连接的句柄，由传输层创建，状态机只通过它发送响应
type Conn struct {
	send chan ResponseWrapper
	done chan struct{}
	once sync.Once
}

func NewConn(buffer int) *Conn {
	return &Conn{
		send: make(chan ResponseWrapper, buffer),
		done: make(chan struct{}),
	}
}

// Send 不会阻塞，连接已关闭或缓冲区已满时返回 false
func (c *Conn) Send(resp ResponseWrapper) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- resp:
		return true
	default:
		return false
	}
}

func (c *Conn) Outbox() <-chan ResponseWrapper {
	return c.send
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}
