package test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildBinary builds the Go binary from the specified source directory. The
// version stays "development" so no command reaches out for release checks.
func buildBinary(sourceDir, outputBinary string) error {
	command := exec.Command("go", "build", "-o", outputBinary, sourceDir)
	output, err := command.CombinedOutput()
	if err != nil {
		fmt.Printf("Build tlab binary output: %s", string(output))
		return err
	}
	return nil
}

func TestMain(m *testing.M) {
	InitLogging()

	if err := buildBinary(filepath.Join(".."), CLIPath); err != nil {
		fmt.Printf("Error while preparing binary: %s", err.Error())
		os.Exit(1)
	}

	// Credentials from the developer's shell must not leak into tests
	saved := map[string]string{}
	for _, name := range credentialEnvVars {
		saved[name] = LookupAndUnsetEnvVar(name)
	}

	exitCode := m.Run()

	for name, value := range saved {
		RestoreEnvVar(name, value)
	}
	_ = os.Remove(CLIPath)
	os.Exit(exitCode)
}
