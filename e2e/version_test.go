package e2e

import (
	"fmt"
	"strings"
	"testing"
)

func TestVersionFlagOutputsInjectedVersion(t *testing.T) {
	t.Parallel()

	injectedVersion := "e2e-smoke"
	ldflags := fmt.Sprintf("-X github.com/removethebg/rtbg/cmd.Version=%s -X github.com/removethebg/rtbg/cmd.GitCommit=abc1234", injectedVersion)
	repoRoot, binaryPath := buildCLIBinary(t, ldflags)

	// Run the binary with --version and verify the output contains the injected version
	output, code := runCLI(t, binaryPath, repoRoot, nil, "--version")
	if code != 0 {
		t.Fatalf("running --version exited %d\n%s", code, output)
	}
	if !strings.Contains(output, injectedVersion) {
		t.Fatalf("expected version output to contain %q, got: %q", injectedVersion, output)
	}
	if !strings.Contains(output, "abc1234") {
		t.Fatalf("expected version output to contain the commit, got: %q", output)
	}
}
