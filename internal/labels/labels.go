// Package labels loads hand-labeled ground-truth point files for
// offline inspection. It is not part of the evaluation loop.
package labels

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Load parses a labeled-points file where each line holds coordinate
// pairs followed by a count token, for example
//
//	[211, 88],[257, 76],[279, 60],[4]
//
// and returns the deduplicated coordinate tokens of each line, printing
// each parsed line to out as it goes.
func Load(path string, out io.Writer) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file %q: %w", path, err)
	}

	var parsed [][]string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed = append(parsed, parseLine(line))
	}

	for _, points := range parsed {
		fmt.Fprintln(out, points)
	}
	return parsed, nil
}

// parseLine splits one line on commas, drops duplicate tokens while
// preserving first-seen order, and reassembles bracketed coordinate
// pairs that the comma split tore apart.
func parseLine(line string) []string {
	split := strings.Split(line, ",")

	seen := make(map[string]struct{}, len(split))
	unique := make([]string, 0, len(split))
	for _, tok := range split {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		unique = append(unique, tok)
	}

	var points []string
	for i := 0; i < len(unique); i++ {
		tok := unique[i]
		if i < len(unique)-1 && strings.Contains(tok, "[") && strings.Contains(unique[i+1], "]") {
			points = append(points, strings.TrimSpace(tok)+" "+strings.TrimSpace(unique[i+1]))
		} else if strings.Contains(tok, "[") && strings.Contains(tok, "]") {
			points = append(points, strings.TrimSpace(tok))
		}
	}
	return points
}
