// Package admin serves health, metrics and peer inspection over HTTP.
package admin

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/anp/internal/observability"
	"github.com/danmuck/anp/internal/protocol/catalog"
	"github.com/danmuck/anp/internal/reactor"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.6.0"

// PeerSource is the slice of the reactor the admin API needs.
type PeerSource interface {
	Peers() []reactor.PeerInfo
	Detach(id uuid.UUID) bool
}

type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	peers  PeerSource
	ready  func() bool
	router *gin.Engine
}

func New(id, addr string, corsOrigins []string, peers PeerSource) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.AccessLog(log.Logger, id))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		ID:       id,
		Addr:     addr,
		Appeared: time.Now(),
		peers:    peers,
		ready:    func() bool { return true },
		router:   r,
	}
	s.registerRoutes()
	return s
}

// SetReady replaces the readiness probe used by /ready.
func (s *Server) SetReady(fn func() bool) {
	if fn != nil {
		s.ready = fn
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		ready := s.ready()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":   ready,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	s.router.GET("/peers", func(c *gin.Context) {
		peers := []reactor.PeerInfo{}
		if s.peers != nil {
			peers = s.peers.Peers()
		}
		c.JSON(http.StatusOK, gin.H{"peers": peers, "count": len(peers)})
	})

	s.router.DELETE("/peers/:id", func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer id"})
			return
		}
		if s.peers == nil || !s.peers.Detach(id) {
			c.JSON(http.StatusNotFound, gin.H{"error": "peer not found"})
			return
		}
		log.Info().Str("peer", id.String()).Msg("peer detach requested")
		c.JSON(http.StatusAccepted, gin.H{"status": "detaching", "id": id.String()})
	})

	s.router.GET("/types/:type", func(c *gin.Context) {
		t, err := ParseType(c.Param("type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f := catalog.Split(t)
		c.JSON(http.StatusOK, gin.H{
			"type":      t,
			"name":      catalog.Name(t),
			"describe":  catalog.Describe(t),
			"family":    f.Family.String(),
			"role":      f.Role.String(),
			"namespace": uint16(f.Namespace),
			"subtype":   f.Subtype,
		})
	})
}

// ParseType accepts a symbolic name or a decimal or 0x-prefixed number.
func ParseType(raw string) (uint32, error) {
	if t, ok := catalog.Lookup(raw); ok {
		return t, nil
	}
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		return 0, errors.Errorf("unknown type %q", raw)
	}
	return uint32(v), nil
}

// Serve listens on Addr until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return errors.Wrapf(err, "admin listen %s", s.Addr)
	}
	return s.ServeListener(ctx, ln)
}

func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().Str("service", s.ID).Str("addr", ln.Addr().String()).Msg("admin server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "admin shutdown")
		}
		return nil
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
