package main

import (
	"testing"

	"timelapse/internal/config"

	"github.com/spf13/pflag"
)

func parse(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	legacyLevel(fs)
	return fs
}

func TestLegacyLevel(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"1"}, "trace"},
		{[]string{"2"}, "debug"},
		{[]string{"7"}, "error"},
		{nil, ""},
		{[]string{"--log-level", "debug", "1"}, "debug"},
	}
	for _, c := range cases {
		fs := parse(t, c.args...)
		got, _ := fs.GetString("log-level")
		if got != c.want {
			t.Errorf("args %v: log-level = %q, want %q", c.args, got, c.want)
		}
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	if code := run([]string{"--no-such-flag"}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}
