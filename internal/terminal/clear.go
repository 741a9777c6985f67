package terminal

import (
	"os"
	"os/exec"
	"runtime"
)

// DefaultClearScreen clears the visible screen with the platform's
// clear command. Failure is reported by the caller and never fatal.
func DefaultClearScreen() error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
