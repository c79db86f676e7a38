package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/anp/internal/admin"
	"github.com/danmuck/anp/internal/config"
	"github.com/danmuck/anp/internal/logging"
	"github.com/danmuck/anp/internal/netio"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/protocol/catalog"
	"github.com/danmuck/anp/internal/reactor"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveOpts struct {
	config string
	listen string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an ANP echo daemon",
	Long: `serve accepts TCP peers and answers every message with a copy whose
type carries the response role. With admin enabled it also serves /health,
/ready, /metrics and /peers over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if serveOpts.config != "" {
			loaded, err := config.Load(serveOpts.config)
			if err != nil {
				return err
			}
			cfg = loaded
			log.Info().Str("path", serveOpts.config).Msg("loaded config")
		}
		if serveOpts.listen != "" {
			cfg.Listen = serveOpts.listen
		}
		logging.Apply(cfg.Log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func echoHandler() reactor.Handler {
	return reactor.HandlerFuncs{
		OnMessage: func(p *reactor.Peer, m *protocol.Message) {
			reply := m.Clone()
			reply.Type = catalog.WithRole(m.Type, catalog.RoleResponse)
			if err := p.Send(reply); err != nil {
				log.Warn().Err(err).Str("peer", p.ID.String()).Msg("echo dropped")
			}
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	r, err := reactor.New(reactor.ConfigFrom(cfg), echoHandler())
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		r.Close()
		return errors.Wrapf(err, "listen %s", cfg.Listen)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("anp daemon listening")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		return acceptLoop(ctx, ln, r)
	})
	if cfg.Admin.Enabled {
		srv := admin.New("anpd", cfg.Admin.Listen, cfg.Admin.CorsOrigins, r)
		g.Go(func() error { return srv.Serve(ctx) })
	}
	return g.Wait()
}

func acceptLoop(ctx context.Context, ln net.Listener, r *reactor.Reactor) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		tcp, ok := conn.(*net.TCPConn)
		if !ok {
			conn.Close()
			continue
		}
		remote := conn.RemoteAddr().String()
		sock, err := netio.FromTCPConn(tcp)
		if err != nil {
			log.Warn().Err(err).Str("remote", remote).Msg("socket setup failed")
			continue
		}
		if _, err := r.Attach(sock, remote); err != nil {
			log.Warn().Err(err).Str("remote", remote).Msg("peer rejected")
			sock.Close()
		}
	}
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&serveOpts.config, "config", "c", "", "config file (.toml or .yaml)")
	f.StringVar(&serveOpts.listen, "listen", "", "override the listen address")
}
