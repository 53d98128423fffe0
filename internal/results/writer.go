// Package results persists evaluation output: per-group average files
// and, optionally, per-video rows in PostgreSQL.
package results

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteValues serializes values as sep-delimited text to dest, creating
// the file if absent. With appendMode set the values are added after
// any existing content, which supports incremental group-by-group
// writes within one run; otherwise the file is truncated first.
func WriteValues(values []float64, dest string, sep string, appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(dest, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results file %q: %v", dest, err)
	}

	w := bufio.NewWriter(f)
	for _, v := range values {
		if _, err := fmt.Fprintf(w, "%.5f%s", v, sep); err != nil {
			f.Close()
			return fmt.Errorf("failed to write results to %q: %v", dest, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush results to %q: %v", dest, err)
	}
	return f.Close()
}

// GroupFileName combines the output base name with a group identifier:
// "out.eval" and group 3 become "out3.eval". The same name doubles as
// the group's resume marker.
func GroupFileName(base string, groupID int) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + strconv.Itoa(groupID) + ".eval"
}
