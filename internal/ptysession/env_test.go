package ptysession

import "testing"

func TestSensitiveVarsFiltered(t *testing.T) {
	names := []string{
		"SSH_AUTH_SOCK", "AWS_SECRET_ACCESS_KEY", "GITHUB_TOKEN",
		"MY_API_KEY", "SOME_PASSWORD", "DB_CREDENTIAL", "OAUTH_AUTH_TOKEN",
	}
	for _, n := range names {
		if !isSensitiveVar(n) {
			t.Errorf("expected %s to be sensitive", n)
		}
	}
}

func TestSafeVarsAllowed(t *testing.T) {
	names := []string{"PATH", "HOME", "LANG", "EDITOR", "SHELL"}
	for _, n := range names {
		if isSensitiveVar(n) {
			t.Errorf("expected %s to be safe", n)
		}
	}
}

func TestBuildEnvironmentSetsTerm(t *testing.T) {
	env := buildEnvironment(nil, "xterm-256color")
	found := false
	for _, kv := range env {
		if kv == "TERM=xterm-256color" {
			found = true
		}
	}
	if !found {
		t.Fatal("TERM not set")
	}
}

func TestBuildEnvironmentExtraOverrides(t *testing.T) {
	env := buildEnvironment(map[string]string{"TERM": "dumb", "FOO": "bar"}, "xterm-256color")
	var term, foo string
	for _, kv := range env {
		if len(kv) > 5 && kv[:5] == "TERM=" {
			term = kv[5:]
		}
		if len(kv) > 4 && kv[:4] == "FOO=" {
			foo = kv[4:]
		}
	}
	if term != "dumb" {
		t.Fatalf("expected extra to override TERM, got %q", term)
	}
	if foo != "bar" {
		t.Fatalf("expected FOO=bar, got %q", foo)
	}
}

func TestBuildEnvironmentDropsSensitive(t *testing.T) {
	t.Setenv("AWS_SECRET_ACCESS_KEY", "shhh")
	env := buildEnvironment(nil, "xterm-256color")
	for _, kv := range env {
		if len(kv) >= 21 && kv[:21] == "AWS_SECRET_ACCESS_KEY" {
			t.Fatalf("sensitive var leaked: %s", kv)
		}
	}
}
