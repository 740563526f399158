package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flash categories. One-shot notices stored in the session and consumed by
// the next rendered page.
const (
	FlashError   = "error"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

// Flash queues a one-shot message for the next rendered page.
func Flash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	_ = session.Save()
}

// TakeFlashes drains all queued messages grouped by category. Draining
// requires a session save so the messages are not shown twice.
func TakeFlashes(c *gin.Context) map[string][]string {
	session := sessions.Default(c)
	flashes := map[string][]string{}
	for _, kind := range []string{FlashError, FlashSuccess, FlashInfo} {
		for _, msg := range session.Flashes(kind) {
			if s, ok := msg.(string); ok {
				flashes[kind] = append(flashes[kind], s)
			}
		}
	}
	_ = session.Save()
	return flashes
}
