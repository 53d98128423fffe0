package descriptor

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed marks a descriptor line that cannot be used. Callers are
// expected to log the offending line and move on to the next one.
var ErrMalformed = errors.New("malformed video descriptor")

// Descriptor identifies one video to evaluate: where it lives, how many
// animals it is known to contain, and the region of each frame the
// detector should look at.
type Descriptor struct {
	Path          string
	ExpectedCount int
	Crop          image.Rectangle
}

// ParseLine parses one line of a group video list. The format is
//
//	<video path>,<expected animal count>,<cropX cropY cropW cropH>
//
// for example "/videos/clip1.mp4,5,230 10 720 720". Any violation
// (missing file, non-numeric field, wrong crop arity) returns an error
// wrapping ErrMalformed rather than anything fatal.
func ParseLine(line string) (Descriptor, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return Descriptor{}, fmt.Errorf("%w: expected at least 2 comma-separated fields in %q", ErrMalformed, line)
	}

	path := strings.TrimSpace(fields[0])
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Descriptor{}, fmt.Errorf("%w: video path %q is not an existing regular file", ErrMalformed, path)
	}

	count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || count <= 0 {
		return Descriptor{}, fmt.Errorf("%w: animal count %q is not a positive integer", ErrMalformed, strings.TrimSpace(fields[1]))
	}

	if len(fields) < 3 {
		return Descriptor{}, fmt.Errorf("%w: missing crop region in %q", ErrMalformed, line)
	}
	crop, err := parseCrop(fields[2])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v in %q", ErrMalformed, err, line)
	}

	return Descriptor{Path: path, ExpectedCount: count, Crop: crop}, nil
}

// parseCrop converts a whitespace-separated "x y w h" spec into a rectangle.
func parseCrop(spec string) (image.Rectangle, error) {
	dims := strings.Fields(spec)
	if len(dims) != 4 {
		return image.Rectangle{}, fmt.Errorf("crop region needs exactly 4 integers, got %d", len(dims))
	}
	var vals [4]int
	for i, d := range dims {
		v, err := strconv.Atoi(d)
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("crop component %q is not an integer", d)
		}
		if v < 0 {
			return image.Rectangle{}, fmt.Errorf("crop component %d is negative", v)
		}
		vals[i] = v
	}
	return image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3]), nil
}

// ReadLines returns the non-blank lines of a group video list file.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read video list %q: %w", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
