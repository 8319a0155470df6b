package ptysession

import (
	"os"
	"strings"
)

var explicitSensitiveVars = map[string]bool{
	"SSH_AUTH_SOCK":         true,
	"SSH_AGENT_PID":         true,
	"GPG_AGENT_INFO":        true,
	"AWS_SECRET_ACCESS_KEY": true,
	"AWS_SESSION_TOKEN":     true,
	"GITHUB_TOKEN":          true,
	"ANTHROPIC_API_KEY":     true,
	"OPENAI_API_KEY":        true,
	"CLAUDE_API_KEY":        true,
	"HF_TOKEN":              true,
	"HUGGINGFACE_TOKEN":     true,
}

// isSensitiveVar reports whether an environment variable name should be
// withheld from a spawned child: a fixed list of known credential
// variables, plus a few substring patterns (SECRET, PASSWORD, CREDENTIAL,
// PRIVATE_KEY, or any name containing both API and KEY, or both AUTH and
// TOKEN).
func isSensitiveVar(name string) bool {
	if explicitSensitiveVars[name] {
		return true
	}
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "SECRET"),
		strings.Contains(upper, "PASSWORD"),
		strings.Contains(upper, "CREDENTIAL"),
		strings.Contains(upper, "PRIVATE_KEY"):
		return true
	case strings.Contains(upper, "API") && strings.Contains(upper, "KEY"):
		return true
	case strings.Contains(upper, "AUTH") && strings.Contains(upper, "TOKEN"):
		return true
	default:
		return false
	}
}

// buildEnvironment returns the process environment for a spawned child:
// the current process's environment with sensitive variables filtered
// out, TERM forced to term, and extra applied on top (able to override
// anything, including TERM).
func buildEnvironment(extra map[string]string, term string) []string {
	filtered := make(map[string]string)
	for _, kv := range os.Environ() {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			continue
		}
		key, val := kv[:i], kv[i+1:]
		if !isSensitiveVar(key) {
			filtered[key] = val
		}
	}
	filtered["TERM"] = term
	for k, v := range extra {
		filtered[k] = v
	}

	out := make([]string, 0, len(filtered))
	for k, v := range filtered {
		out = append(out, k+"="+v)
	}
	return out
}
