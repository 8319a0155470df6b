//go:build darwin

package toolops

import (
	"os/exec"
	"strconv"
	"strings"
)

func readlink(path string) (string, error) {
	return "", errNotSupported
}

// darwinCwd shells out to lsof, the only portable way to learn a
// process's working directory on macOS without cgo.
func darwinCwd(pid int) string {
	out, err := exec.Command("lsof", "-a", "-d", "cwd", "-p", strconv.Itoa(pid), "-Fn").Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "n") {
			return line[1:]
		}
	}
	return ""
}
