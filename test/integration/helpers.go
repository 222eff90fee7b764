//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	APIKey     string
	BaseURL    string
	Address    string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIKey:     os.Getenv("DEBANK_API_KEY"),
		BaseURL:    os.Getenv("DEBANK_BASE_URL"),
		Address:    os.Getenv("DEBANK_TEST_ADDRESS"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("SHADOWNAV_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the shadownav binary
func getBinaryPath() string {
	if path := os.Getenv("SHADOWNAV_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../shadownav",
		"./shadownav",
		"../shadownav",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "shadownav"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIKey == "" {
		t.Skip("DEBANK_API_KEY not set, skipping integration test")
	}

	if config.Address == "" {
		t.Skip("DEBANK_TEST_ADDRESS not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the CLI binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("shadownav binary not found at %s, skipping CLI test", config.BinaryPath)
	}
}

// CommandRunner runs shadownav commands against an isolated home directory
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	home   string
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
		home:   t.TempDir(),
	}
}

// Run executes a shadownav command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a shadownav command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+runner.home,
		"SHADOW_NAV_STORE="+filepath.Join(runner.home, "board.yml"),
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}
