// Package web serves the countdown as a single page, a JSON state endpoint and
// a WebSocket that pushes one snapshot per tick.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"releaseday/internal/clock"
	"releaseday/internal/countdown"
	"releaseday/internal/display"
	"releaseday/internal/refresh"
	"releaseday/internal/share"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Target     countdown.Target
	Labels     display.Labels
	ShareTitle string
	PageURL    string
	Clock      clock.Clock
	Interval   time.Duration
	Version    string
}

type Server struct {
	opts   Options
	engine *gin.Engine

	// cancelled on shutdown so long-lived sockets let go
	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Interval <= 0 {
		opts.Interval = refresh.DefaultInterval
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods:    []string{"GET", "OPTIONS", "HEAD"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	r.SetHTMLTemplate(template.Must(template.New("page").Parse(pageHTML)))

	s := &Server{opts: opts, engine: r}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	MountGroup(r, GroupConfig{Prefix: "/"}, PageModule(s), HealthModule(s), SocketModule(s))
	MountGroup(r, GroupConfig{Prefix: "/api"}, CountdownModule(s))
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.Close)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// Close ends every open socket stream. The server stays usable for plain
// requests.
func (s *Server) Close() {
	s.cancel()
}

func (s *Server) snapshot(now time.Time) countdown.Snapshot {
	return countdown.NewSnapshot(s.opts.Target.Compute(now), s.opts.Target, now)
}

func (s *Server) sharePayload(pageURL string) share.Payload {
	if s.opts.PageURL != "" {
		pageURL = s.opts.PageURL
	}
	return share.NewPayload(s.opts.ShareTitle, s.opts.Labels.ShareText, pageURL)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// requestURL rebuilds the absolute URL the client asked for.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + "/"
}
