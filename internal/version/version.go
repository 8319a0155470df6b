package version

import "strings"

// Version is the current version of vtmuxd.
const Version = "0.1.0"

// ProtocolVersion is the attach wire protocol's version, bumped whenever
// attachproto's framing or message set changes incompatibly. A server
// reports it in every session's Info message so a client built against a
// different protocol revision can warn instead of silently misparsing
// frames.
const ProtocolVersion = 1

// GitRef is injected at build time for dev builds (e.g. via -ldflags -X).
var GitRef = "unknown"

// ReleaseBuild is injected at build time. When true, DisplayVersion omits git ref.
var ReleaseBuild = "false"

// DisplayVersion returns the user-facing build version:
// - release: v<semver>
// - dev:     v<semver>-<gitref>
func DisplayVersion() string {
	if isReleaseBuild() {
		return "v" + Version
	}
	return "v" + Version + "-" + normalizeRef(GitRef)
}

// CompatibleProtocol reports whether a peer reporting peerVersion can
// interoperate with this build's attach protocol. vtmux has no protocol
// history yet, so this is an exact match; it exists so a future protocol
// bump has a single place to loosen into a range check.
func CompatibleProtocol(peerVersion int) bool {
	return peerVersion == ProtocolVersion
}

func isReleaseBuild() bool {
	switch strings.ToLower(strings.TrimSpace(ReleaseBuild)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func normalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "unknown"
	}
	return ref
}
