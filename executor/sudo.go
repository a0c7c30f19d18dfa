package executor

import (
	"fmt"
	"strings"
)

// sudoCommand wraps a shell command for privileged execution. The payload is
// single-quoted so $, backticks, backslashes and double quotes reach the
// inner shell untouched; embedded single quotes use the '"'"' idiom.
func sudoCommand(command string) string {
	escaped := strings.ReplaceAll(command, `'`, `'"'"'`)
	return fmt.Sprintf(`sudo -E /bin/sh -c '%s'`, escaped)
}
