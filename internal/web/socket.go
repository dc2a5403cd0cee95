package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"releaseday/internal/countdown"
	"releaseday/internal/refresh"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func SocketModule(s *Server) Module {
	return ModuleFunc(func(c *Controller) {
		c.Handle(http.MethodGet, "/ws", s.serveSocket)
	})
}

// serveSocket streams a snapshot immediately and then once per tick. Each
// connection owns its own driver, stopped when either side goes away.
func (s *Server) serveSocket(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	log.Debug().Str("remote", remote).Msg("websocket connected")

	var tracker countdown.Tracker
	var driver *refresh.Driver
	driver = refresh.New(s.opts.Clock, s.opts.Interval, func(now time.Time) {
		tracker.Observe(s.opts.Target.Compute(now))
		snap := countdown.NewSnapshot(tracker.State(), s.opts.Target, now)

		if err := writeSnapshot(conn, snap); err != nil {
			log.Debug().Err(err).Str("remote", remote).Msg("websocket write failed")
			driver.Stop()
		}
	})

	if err := driver.Start(s.ctx); err != nil {
		log.Error().Err(err).Msg("websocket refresh")
		return
	}
	// unblocks the read loop on write failure or server shutdown
	go func() {
		<-driver.Done()
		_ = conn.Close()
	}()

	// the page never sends anything; reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	driver.Stop()
	<-driver.Done()
	log.Debug().Str("remote", remote).Msg("websocket disconnected")
}

type jsonWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
}

func writeSnapshot(w jsonWriter, snap countdown.Snapshot) error {
	if err := w.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.WriteJSON(snap)
}
