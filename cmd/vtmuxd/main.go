// Command vtmuxd spawns and multiplexes terminal sessions over PTYs,
// exposing them as a JSON request/response stream over stdio and as
// per-session Unix attach sockets.
package main

import "vtmux/internal/cmd"

func main() {
	cmd.Execute()
}
