package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionDetailed = false
	versionCmd.Run(versionCmd, nil)

	if got := strings.TrimSpace(buf.String()); got != versionLine() {
		t.Fatalf("short output = %q, want %q", got, versionLine())
	}
}

func TestVersionCommand_Detailed(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionDetailed = true
	defer func() { versionDetailed = false }()
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	for _, want := range []string{
		versionLine(),
		"commit:     " + GitCommit,
		"built:      " + BuildDate,
		runtime.Version(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detailed output missing %q\n%s", want, out)
		}
	}
}
