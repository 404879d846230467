package printers

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hazyhaar/confstatus/printer"
)

// Files lists the regular files matching a set of glob patterns and
// attaches them to the archive.
type Files struct {
	patterns []string
	logger   *slog.Logger
}

// NewFiles returns a printer over the files matching patterns.
func NewFiles(patterns []string, logger *slog.Logger) *Files {
	if logger == nil {
		logger = slog.Default()
	}
	return &Files{patterns: patterns, logger: logger}
}

func (f *Files) Title() string { return "%files.title" }

func (f *Files) PrintConfiguration(_ context.Context, w printer.Writer) error {
	files := f.match()
	if len(files) == 0 {
		printer.InfoLine(w, "", "Patterns", f.patterns)
		w.Println("No matching files.")
		return nil
	}
	for _, m := range files {
		printer.InfoLine(w, "", m.path, humanize.IBytes(uint64(m.size))+", modified "+m.mod.Format(time.RFC3339))
	}
	return nil
}

// Attachments returns one file locator per matching file in the archive
// and nothing in other modes.
func (f *Files) Attachments(mode printer.Mode) []*url.URL {
	if mode != printer.ModeZip {
		return nil
	}
	files := f.match()
	urls := make([]*url.URL, 0, len(files))
	for _, m := range files {
		urls = append(urls, &url.URL{Scheme: "file", Path: filepath.ToSlash(m.path)})
	}
	return urls
}

type matchedFile struct {
	path string
	size int64
	mod  time.Time
}

func (f *Files) match() []matchedFile {
	seen := make(map[string]bool)
	var out []matchedFile
	for _, pat := range f.patterns {
		paths, err := filepath.Glob(pat)
		if err != nil {
			f.logger.Warn("printers: bad file pattern", "pattern", pat, "error", err)
			continue
		}
		for _, p := range paths {
			abs, err := filepath.Abs(p)
			if err != nil || seen[abs] {
				continue
			}
			fi, err := os.Stat(abs)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			seen[abs] = true
			out = append(out, matchedFile{path: abs, size: fi.Size(), mod: fi.ModTime()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}
