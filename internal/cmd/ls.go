package cmd

import (
	"fmt"
	"net"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"vtmux/internal/attachproto"
	"vtmux/internal/attachserver"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "list live sessions by probing a running server's attach sockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			return runLs(cmd, cfg.SocketDir)
		},
	}
}

func runLs(cmd *cobra.Command, socketDir string) error {
	ids, err := attachserver.ListSockets(socketDir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tPROGRAM\tPID\tSIZE")
	for _, id := range ids {
		info, err := probeSession(socketDir, id)
		if err != nil {
			fmt.Fprintf(w, "%s\t<unreachable>\t-\t-\n", id)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%dx%d\n", info.SessionID, info.Program, info.Pid, info.Rows, info.Cols)
	}
	return w.Flush()
}

// probeSession dials a session's attach socket just long enough to read
// the Info message every new connection is sent, then disconnects.
func probeSession(dir, id string) (attachproto.SessionInfoPayload, error) {
	path := attachserver.SocketPath(dir, id)
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return attachproto.SessionInfoPayload{}, err
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg, err := attachproto.ReadMessage(conn)
	if err != nil {
		return attachproto.SessionInfoPayload{}, err
	}
	if msg.Type != attachproto.MsgInfo || msg.Info == nil {
		return attachproto.SessionInfoPayload{}, fmt.Errorf("unexpected message type from %s", id)
	}
	return *msg.Info, nil
}
