//go:build linux

package toolops

import "os"

func readlink(path string) (string, error) {
	return os.Readlink(path)
}

func darwinCwd(pid int) string {
	return ""
}
