package gui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/rs/zerolog/log"

	"screen-tool/src/session"
)

// FilterExtensions extracts ".png" from labels such as "PNG (*.png)".
func FilterExtensions(filters []string) []string {
	var exts []string
	for _, f := range filters {
		if ext := filterExt(f); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

func filterExt(filter string) string {
	i := strings.Index(filter, "*.")
	if i < 0 {
		return ""
	}
	ext := filter[i+1:]
	if j := strings.IndexAny(ext, ") ;"); j >= 0 {
		ext = ext[:j]
	}
	return strings.ToLower(ext)
}

// MatchFilter returns the filter whose extension path already carries, or
// the first filter when none matches.
func MatchFilter(path string, filters []string) string {
	ext := normalizedExt(path)
	for _, f := range filters {
		if filterExt(f) == ext && ext != "" {
			return f
		}
	}
	if len(filters) > 0 {
		return filters[0]
	}
	return ""
}

type saveAnswer struct {
	dest session.Destination
	ok   bool
	err  error
}

// ChoosePath shows a save dialog and waits for the answer. It is a
// session.PathChooser and must not be called on the main goroutine.
func (g *App) ChoosePath(ctx context.Context, suggested string, filters []string) (session.Destination, bool, error) {
	answers := make(chan saveAnswer, 1)
	fyne.Do(func() { g.showSaveDialog(suggested, filters, answers) })

	select {
	case a := <-answers:
		return a.dest, a.ok, a.err
	case <-ctx.Done():
		return session.Destination{}, false, ctx.Err()
	}
}

func (g *App) showSaveDialog(suggested string, filters []string, answers chan<- saveAnswer) {
	g.window.Show()
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			answers <- saveAnswer{err: err}
			return
		}
		if w == nil {
			answers <- saveAnswer{}
			return
		}
		path := w.URI().Path()
		_ = w.Close()

		filter := MatchFilter(path, filters)
		if filterExt(filter) != normalizedExt(path) {
			// the extension is appended later; drop the empty file the dialog created
			removeEmpty(path)
		}
		answers <- saveAnswer{dest: session.Destination{Path: path, Filter: filter}, ok: true}
	}, g.window)

	d.SetFileName(filepath.Base(suggested))
	if exts := FilterExtensions(filters); len(exts) > 0 {
		d.SetFilter(storage.NewExtensionFileFilter(exts))
	}
	if loc, err := storage.ListerForURI(storage.NewFileURI(filepath.Dir(suggested))); err == nil {
		d.SetLocation(loc)
	}
	d.Show()
}

func normalizedExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}

func removeEmpty(path string) {
	if st, err := os.Stat(path); err == nil && st.Size() == 0 {
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("failed to remove placeholder file")
		}
	}
}
