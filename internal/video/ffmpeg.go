package video

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Open extracts all frames of the video at path into a scratch
// directory and returns a Source over them. Failures (missing file,
// ffmpeg error, nothing decoded) are reported as ErrOpen.
func Open(path string) (Source, error) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: video file does not exist at path %q", ErrOpen, path)
	}

	scratch, err := os.MkdirTemp("", "trackeval-frames-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	// -vsync 0 keeps one output image per decoded frame.
	ffmpegCommand := exec.Command(
		"ffmpeg",
		"-i", path,
		"-vsync", "0",
		filepath.Join(scratch, "frame_%06d.jpg"),
	)
	output, err := ffmpegCommand.CombinedOutput()
	if err != nil {
		os.RemoveAll(scratch)
		return nil, fmt.Errorf("%w: ffmpeg failed on %q: %v\nOutput: %s", ErrOpen, path, err, output)
	}

	src, err := openFrameDir(scratch)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return src, nil
}

// openFrameDir builds a Source over the JPEG frames in dir.
func openFrameDir(dir string) (*fileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory %q: %v", dir, err)
	}

	var frames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".jpg") {
			frames = append(frames, entry.Name())
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames decoded into %q", dir)
	}
	sort.Strings(frames)

	return &fileSource{dir: dir, frames: frames}, nil
}

// fileSource serves pre-extracted JPEG frames from a scratch directory.
type fileSource struct {
	dir    string
	frames []string
	index  int
}

func (s *fileSource) NextFrame() (image.Image, error) {
	if s.index >= len(s.frames) {
		return nil, io.EOF
	}
	name := s.frames[s.index]

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %q: %v", name, err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %q: %v", name, err)
	}
	s.index++
	return img, nil
}

func (s *fileSource) FrameIndex() int {
	return s.index
}

func (s *fileSource) TotalFrames() int {
	return len(s.frames)
}

func (s *fileSource) Close() error {
	return os.RemoveAll(s.dir)
}
