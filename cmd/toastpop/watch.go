package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/courtbook/toastpop/internal/errors"
	"github.com/courtbook/toastpop/pkg/protocol"
	"github.com/courtbook/toastpop/pkg/toast"
	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var (
		server   string
		elements []string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Connect as a page and print the patches it receives",
		Long: `Connect to a toastpop server the way a browser page does and print every
patch the server sends. Useful for checking what a page would see.

Examples:
  toastpop watch
  toastpop watch --server=http://staging:8080
  toastpop watch --elements=toast-popup-title,toast-popup-message`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, server, elements, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "toastpop server URL")
	cmd.Flags().StringSliceVar(&elements, "elements", toast.IDs, "Toast element ids to report in the handshake")

	return cmd
}

// wsURL turns an http(s) server URL into the live endpoint URL.
func wsURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func runWatch(ctx context.Context, server string, elements []string, out io.Writer) error {
	endpoint, err := wsURL(server)
	if err != nil {
		return errors.New("E202").WithDetail("Invalid server URL " + server).Wrap(err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return errors.New("E202").
			WithSuggestion("Start the server with: toastpop serve").
			Wrap(err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	if err := writeFrame(conn, protocol.FrameHandshake,
		protocol.EncodeClientHello(protocol.NewClientHello(elements...))); err != nil {
		return errors.New("E202").WithDetail("Handshake failed").Wrap(err)
	}

	frames := &frameReader{conn: conn}
	frame, err := frames.next()
	if err != nil {
		return errors.New("E202").WithDetail("Handshake failed").Wrap(err)
	}
	hello, err := protocol.DecodeServerHello(frame.Payload)
	if err != nil || frame.Type != protocol.FrameHandshake {
		return errors.New("E202").WithDetail("Server did not answer the handshake")
	}
	if hello.Status != protocol.HandshakeOK {
		return errors.New("E202").WithDetail("Handshake rejected: " + hello.Status.String())
	}
	fmt.Fprintf(out, "connected as %s\n", hello.SessionID)

	for {
		frame, err := frames.next()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.New("E202").WithDetail("Connection lost").Wrap(err)
		}
		done, err := handleWatchFrame(conn, frame, out)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
		if done {
			return nil
		}
	}
}

// handleWatchFrame prints a frame and answers pings. It reports whether
// the server closed the session.
func handleWatchFrame(conn *websocket.Conn, frame *protocol.Frame, out io.Writer) (bool, error) {
	switch frame.Type {
	case protocol.FramePatches:
		pf, err := protocol.DecodePatches(frame.Payload)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "#%d %s  %d patches, %s\n",
			pf.Seq,
			time.Now().Format(time.TimeOnly),
			len(pf.Patches),
			humanize.Bytes(uint64(protocol.FrameHeaderSize+len(frame.Payload))))
		for _, p := range pf.Patches {
			fmt.Fprintf(out, "  %s\n", formatPatch(p))
		}

	case protocol.FrameControl:
		ct, data, err := protocol.DecodeControl(frame.Payload)
		if err != nil {
			return false, err
		}
		switch ct {
		case protocol.ControlPing:
			pp, _ := data.(*protocol.PingPong)
			var ts uint64
			if pp != nil {
				ts = pp.Timestamp
			}
			pct, pong := protocol.NewPong(ts)
			return false, writeFrame(conn, protocol.FrameControl, protocol.EncodeControl(pct, pong))
		case protocol.ControlClose:
			if cm, ok := data.(*protocol.CloseMessage); ok {
				fmt.Fprintf(out, "closed by server: %s %s\n", cm.Reason, cm.Message)
			}
			return true, nil
		}

	case protocol.FrameError:
		em, err := protocol.DecodeErrorMessage(frame.Payload)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "server error: %v\n", em)
		return em.Fatal, nil
	}
	return false, nil
}

// formatPatch renders a patch as one readable line.
func formatPatch(p protocol.Patch) string {
	switch p.Op {
	case protocol.PatchSetAttr, protocol.PatchSetStyle:
		return fmt.Sprintf("%-11s #%s %s=%q", p.Op, p.ID, p.Key, p.Value)
	default:
		return fmt.Sprintf("%-11s #%s %q", p.Op, p.ID, p.Value)
	}
}

func writeFrame(conn *websocket.Conn, ft protocol.FrameType, payload []byte) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	w, err := conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := protocol.WriteFrame(w, protocol.NewFrame(ft, payload)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// frameReader reads whole frames from a connection, joining fragments.
type frameReader struct {
	conn *websocket.Conn
	asm  protocol.Assembler
}

func (fr *frameReader) next() (*protocol.Frame, error) {
	for {
		_, r, err := fr.conn.NextReader()
		if err != nil {
			return nil, err
		}
		frame, err := protocol.ReadFrame(r)
		if err != nil {
			return nil, err
		}
		whole, err := fr.asm.Add(frame)
		if err != nil {
			return nil, err
		}
		if whole != nil {
			return whole, nil
		}
	}
}
