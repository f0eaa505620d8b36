package util

import (
	"bytes"
	"fmt"
	"strings"
)

// ContextLines formats the error line with up to two lines before it. Lines
// out of range produce an empty string.
func ContextLines(src string, errorLine int) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	var result bytes.Buffer
	for i := max(errorLine-2, 1); i <= errorLine; i++ {
		content := strings.TrimRight(lines[i-1], " \t")
		if i == errorLine {
			result.WriteString(fmt.Sprintf("  >  %3d | %s\n", i, content))
		} else {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, content))
		}
	}
	return result.String()
}
