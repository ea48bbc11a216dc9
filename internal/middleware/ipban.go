package middleware

import (
	"sync"

	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// IPBanList is the in-memory mirror of the ip_bans table, consulted on
// every request before auth even runs. Loaded at startup, kept current by
// the admin module.
type IPBanList struct {
	mu  sync.RWMutex
	set map[string]bool
}

func NewIPBanList(ips []string) *IPBanList {
	set := make(map[string]bool, len(ips))
	for _, ip := range ips {
		set[ip] = true
	}
	return &IPBanList{set: set}
}

func (l *IPBanList) Add(ip string) {
	l.mu.Lock()
	l.set[ip] = true
	l.mu.Unlock()
}

func (l *IPBanList) Remove(ip string) {
	l.mu.Lock()
	delete(l.set, ip)
	l.mu.Unlock()
}

func (l *IPBanList) Banned(ip string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.set[ip]
}

// IPBanGuard rejects requests from banned addresses with a 403.
func IPBanGuard(list *IPBanList) gin.HandlerFunc {
	return func(c *gin.Context) {
		if list.Banned(c.ClientIP()) {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}
