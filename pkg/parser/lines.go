package parser

import "strings"

// SplitLines splits raw into physical lines on "\n" or "\r\n".
// A trailing line ending does not produce an extra empty line.
func SplitLines(raw string) []string {
	if raw == "" {
		return nil
	}

	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}
