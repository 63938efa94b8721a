package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var ErrUnavailable = errors.New("clipboard not initialized")

var (
	writeMu sync.Mutex
	ready   bool
)

// Init must succeed before any write. Without a display it fails and every
// write returns ErrUnavailable.
func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// WriteImage places PNG-encoded bytes on the clipboard.
func WriteImage(png []byte) error {
	return write(clipboard.FmtImage, png)
}

// WriteText places text on the clipboard.
func WriteText(text string) error {
	return write(clipboard.FmtText, []byte(text))
}

// write is mutex-guarded to prevent corruption under parallel writes.
func write(f clipboard.Format, data []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrUnavailable
	}
	clipboard.Write(f, data)
	return nil
}

// Writer adapts the package functions to interfaces that take an image writer.
type Writer struct{}

func (Writer) WriteImage(png []byte) error { return WriteImage(png) }

func (Writer) WriteText(text string) error { return WriteText(text) }
