package cmd

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vtmux/internal/attachproto"
	"vtmux/internal/attachserver"
	"vtmux/internal/version"
)

func newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <session_id>",
		Short: "attach interactively to a running session over its Unix socket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			return runAttach(cmd, cfg.SocketDir, args[0])
		},
	}
}

func runAttach(cmd *cobra.Command, socketDir, sessionID string) error {
	conn, err := net.Dial("unix", attachserver.SocketPath(socketDir, sessionID))
	if err != nil {
		return fmt.Errorf("attach: %w", err)
	}
	defer conn.Close()

	stdinFd := int(os.Stdin.Fd())
	raw := isatty.IsTerminal(uintptr(stdinFd))
	if raw {
		prev, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("attach: enter raw mode: %w", err)
		}
		defer term.Restore(stdinFd, prev)
	}

	if raw {
		if w, h, err := term.GetSize(stdinFd); err == nil {
			attachproto.WriteMessage(conn, attachproto.NewResize(uint16(h), uint16(w)))
		}
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGWINCH)
		go func() {
			for range sig {
				if w, h, err := term.GetSize(stdinFd); err == nil {
					attachproto.WriteMessage(conn, attachproto.NewResize(uint16(h), uint16(w)))
				}
			}
		}()
		defer signal.Stop(sig)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := attachproto.ReadMessage(conn)
			if err != nil {
				return
			}
			switch msg.Type {
			case attachproto.MsgOutput:
				cmd.OutOrStdout().Write(msg.Output)
			case attachproto.MsgInfo:
				if msg.Info != nil {
					if !version.CompatibleProtocol(msg.Info.ProtocolVersion) {
						fmt.Fprintf(os.Stderr, "warning: server speaks attach protocol v%d, this client expects v%d\n",
							msg.Info.ProtocolVersion, version.ProtocolVersion)
					}
					os.Stdout.WriteString(msg.Info.Screen)
				}
			case attachproto.MsgClose:
				return
			}
		}
	}()

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if err := attachproto.WriteMessage(conn, attachproto.NewInput(append([]byte(nil), buf[:n]...))); err != nil {
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					return
				}
				return
			}
		}
	}()

	<-done
	return nil
}
