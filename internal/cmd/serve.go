package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"vtmux/internal/eventlog"
	"vtmux/internal/sessionmgr"
	"vtmux/internal/toolops"
)

// request is one line of the stdio JSON-RPC-style protocol: an operation
// name, an opaque id echoed back on the response, and operation-specific
// params.
type request struct {
	ID     json.RawMessage `json:"id"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params"`
}

type response struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  *errorPayload   `json:"error,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the session server, speaking one JSON request/response per line over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runServe(in io.Reader, out io.Writer) error {
	cfg := loadConfig()
	log := eventlog.New(cfg.LogPath != "", cfg.LogPath)
	defer log.Close()

	mgr := sessionmgr.New(sessionmgr.Config{
		MaxSessions:   cfg.MaxSessions,
		SocketDir:     cfg.SocketDir,
		DefaultRows:   cfg.DefaultRows,
		DefaultCols:   cfg.DefaultCols,
		DefaultShell:  cfg.DefaultShell,
		Term:          cfg.Term,
		ScrollbackMax: cfg.ScrollbackLimit,
		PromptPattern: cfg.PromptPattern,
	}, slog.Default())
	defer mgr.Shutdown()

	ops := toolops.New(mgr, log)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			enc.Encode(response{Error: &errorPayload{Code: string(toolops.CodeIOError), Message: err.Error()}})
			continue
		}
		enc.Encode(dispatch(ops, req))
	}
	return scanner.Err()
}

func dispatch(ops *toolops.Ops, req request) response {
	result, err := dispatchOp(ops, req.Op, req.Params)
	if err != nil {
		return response{ID: req.ID, Error: toError(err)}
	}
	return response{ID: req.ID, Result: result}
}

func dispatchOp(ops *toolops.Ops, op string, params json.RawMessage) (any, error) {
	switch op {
	case "create":
		var in toolops.CreateInput
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, err
		}
		return ops.Create(in)
	case "destroy":
		var in toolops.DestroyInput
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, err
		}
		return ops.Destroy(in)
	case "list":
		return ops.List(), nil
	case "send":
		var in toolops.SendInput
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, err
		}
		return ops.Send(in)
	case "read":
		var in toolops.ReadInput
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, err
		}
		return ops.Read(in)
	case "info":
		var in toolops.InfoInput
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, err
		}
		return ops.Info(in)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

func toError(err error) *errorPayload {
	if tErr, ok := err.(*toolops.Error); ok {
		return &errorPayload{Code: string(tErr.Code), Message: tErr.Message}
	}
	return &errorPayload{Code: string(toolops.CodeIOError), Message: err.Error()}
}
