package display

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/ah2166/trackeval/internal/detect"
)

const escapeByte = 27

// One reader owns stdin for the whole process. Previews come and go
// per video; if each started its own reader, closed ones would stay
// blocked in Read and steal key presses from the live one.
var (
	keyReaderOnce sync.Once
	stdinKeys     chan Key
)

func startKeyReader() {
	stdinKeys = make(chan Key, 4)
	go forwardKeys(os.Stdin, stdinKeys)
}

// forwardKeys forwards recognized control keys from r. Unrecognized
// keys are dropped, and so are keys arriving faster than the loop
// consumes them.
func forwardKeys(r io.Reader, keys chan<- Key) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil || n == 0 {
			return
		}
		var k Key
		switch buf[0] {
		case escapeByte:
			k = KeyCancel
		case 'Q':
			k = KeyAbort
		default:
			continue
		}
		select {
		case keys <- k:
		default:
		}
	}
}

// Preview is the default live display: each evaluated frame is rendered
// with its detection overlay to a rolling preview file, and control
// keys are read from the terminal in raw mode.
type Preview struct {
	path     string
	keys     <-chan Key
	oldState *term.State
	stdinFd  int
}

// NewPreview opens a preview display writing rendered frames to path.
// When stdin is not a terminal the display still renders frames but
// never reports a key press.
func NewPreview(path string) (*Preview, error) {
	p := &Preview{
		path:    path,
		stdinFd: -1,
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to put terminal into raw mode: %v", err)
		}
		p.stdinFd = fd
		p.oldState = state
		keyReaderOnce.Do(startKeyReader)
		p.keys = stdinKeys
	}

	return p, nil
}

// Show renders the frame with its overlay and atomically replaces the
// preview file.
func (p *Preview) Show(frame image.Image, detections []detect.Detection) error {
	rendered := Overlay(frame, detections)

	tmp := p.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create preview file: %v", err)
	}
	if err := jpeg.Encode(f, rendered, nil); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode preview frame: %v", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

// WaitKey waits at most timeout for a control key. With no terminal
// attached it always reports KeyNone after the timeout.
func (p *Preview) WaitKey(timeout time.Duration) Key {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case k := <-p.keys:
		return k
	case <-t.C:
		return KeyNone
	}
}

// Close restores the terminal and removes the preview file. The shared
// stdin reader stays available for the next video's preview.
func (p *Preview) Close() error {
	if p.oldState != nil {
		if err := term.Restore(p.stdinFd, p.oldState); err != nil {
			return err
		}
		p.oldState = nil
	}
	os.Remove(p.path)
	os.Remove(p.path + ".tmp")
	return nil
}
