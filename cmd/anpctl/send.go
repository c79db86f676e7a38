package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/anp/internal/netio"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/reactor"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

var sendOpts struct {
	addr    string
	timeout time.Duration
}

var sendCmd = &cobra.Command{
	Use:   "send [kind:value]...",
	Short: "Send one message to a daemon and print the reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMessage(args)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), sendOpts.timeout)
		defer cancel()
		reply, err := roundTrip(ctx, sendOpts.addr, m)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderMessage(reply))
		return nil
	},
}

// roundTrip sends m on a fresh connection and waits for the first reply.
func roundTrip(ctx context.Context, addr string, m *protocol.Message) (*protocol.Message, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	sock, err := netio.FromTCPConn(conn.(*net.TCPConn))
	if err != nil {
		return nil, err
	}

	replies := make(chan *protocol.Message, 1)
	closed := make(chan error, 1)
	r, err := reactor.New(reactor.DefaultConfig(), reactor.HandlerFuncs{
		OnMessage: func(_ *reactor.Peer, m *protocol.Message) {
			select {
			case replies <- m:
			default:
			}
		},
		OnClose: func(_ *reactor.Peer, err error) {
			closed <- err
		},
	})
	if err != nil {
		sock.Close()
		return nil, err
	}
	peer, err := r.Attach(sock, addr)
	if err != nil {
		sock.Close()
		r.Close()
		return nil, err
	}
	if err := peer.Send(m); err != nil {
		r.Close()
		return nil, err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(runCtx)
	}()
	defer func() {
		stop()
		<-done
	}()

	select {
	case reply := <-replies:
		return reply, nil
	case err := <-closed:
		return nil, errors.Wrap(err, "peer closed before reply")
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for reply")
	}
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendOpts.addr, "addr", "127.0.0.1:4400", "daemon address")
	f.DurationVar(&sendOpts.timeout, "timeout", 5*time.Second, "dial and reply timeout")
	f.Uint32Var(&encodeOpts.major, "major", 0, "protocol major version")
	f.Uint32Var(&encodeOpts.minor, "minor", 6, "protocol minor version")
	f.StringVar(&encodeOpts.typ, "type", "KANP_RES_OK", "message type, by name or number")
	f.Uint64Var(&encodeOpts.id, "id", 0, "message id")
}
