package confwriter

import (
	"archive/zip"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hazyhaar/pkg/idgen"
)

// ZipWriter writes one archive entry per section, named "NNN-<title>.txt",
// and attachment groups as "NNN-<title>/<file>". NNN is a counter that
// advances once per closed section and once per attachment group, so
// prefixes grow strictly across the whole archive.
//
// Archive assembly is best effort: failing to open an entry or to read an
// attachment is logged at debug level and skipped, so the client still
// receives a readable archive. Errors from the underlying sink are sticky
// and reported by Flush and Close.
type ZipWriter struct {
	base
	dst     io.Writer
	zw      *zip.Writer
	out     entrySink
	counter int
	closed  bool

	open    Opener
	newName idgen.Generator
	now     func() time.Time
	logger  *slog.Logger
}

// ZipOption configures a ZipWriter.
type ZipOption func(*ZipWriter)

// WithOpener sets how attachment locators are opened. Default: DefaultOpener(nil).
func WithOpener(o Opener) ZipOption {
	return func(z *ZipWriter) { z.open = o }
}

// WithNameGenerator sets the generator used for attachments whose locator
// has no file name.
func WithNameGenerator(g idgen.Generator) ZipOption {
	return func(z *ZipWriter) { z.newName = g }
}

// WithClock sets the modification time source for entries.
func WithClock(now func() time.Time) ZipOption {
	return func(z *ZipWriter) { z.now = now }
}

// WithLogger sets the logger for absorbed archive errors.
func WithLogger(l *slog.Logger) ZipOption {
	return func(z *ZipWriter) { z.logger = l }
}

// entrySink forwards to the open archive entry; output written while no
// entry is open is dropped.
type entrySink struct {
	w io.Writer
}

func (s *entrySink) Write(p []byte) (int, error) {
	if s.w == nil {
		return len(p), nil
	}
	return s.w.Write(p)
}

// NewZipWriter returns an archive writer over w, compressing with deflate
// at best speed.
func NewZipWriter(w io.Writer, opts ...ZipOption) *ZipWriter {
	z := &ZipWriter{
		dst:     w,
		zw:      zip.NewWriter(w),
		open:    DefaultOpener(nil),
		newName: idgen.Prefixed("file", idgen.NanoID(12)),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(z)
	}
	z.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})
	z.init("zip", &z.out, z.raw, z.newline)
	return z
}

func (z *ZipWriter) newline() { z.raw("\n") }

// Counter returns the prefix the next entry will get.
func (z *ZipWriter) Counter() int { return z.counter }

// Title opens the section entry "NNN-title.txt".
func (z *ZipWriter) Title(title string) {
	z.startEntry(fmt.Sprintf("%03d-%s.txt", z.counter, title))
}

// End closes the section entry and moves on to the next prefix.
func (z *ZipWriter) End() {
	z.closeEntry()
	z.counter++
}

// HandleAttachments copies every locator into "NNN-title/<name>", in
// order, then moves on to the next prefix. Locators that cannot be opened
// or read leave an empty or partial entry behind.
func (z *ZipWriter) HandleAttachments(ctx context.Context, title string, urls []*url.URL) error {
	for _, u := range urls {
		if u == nil {
			continue
		}
		name := z.attachmentName(u)
		if z.startEntry(fmt.Sprintf("%03d-%s/%s", z.counter, title, name)) {
			z.copyAttachment(ctx, u)
		}
		z.closeEntry()
	}
	z.counter++
	return z.err
}

// Flush writes buffered section data to the archive and flushes the
// archive stream to the sink.
func (z *ZipWriter) Flush() error {
	if z.err != nil {
		return z.err
	}
	if z.err = z.bw.Flush(); z.err != nil {
		return z.err
	}
	if z.closed {
		z.err = flushSink(z.dst)
		return z.err
	}
	if z.err = z.zw.Flush(); z.err != nil {
		return z.err
	}
	z.err = flushSink(z.dst)
	return z.err
}

// Close finalizes the archive. It does not close the sink.
func (z *ZipWriter) Close() error {
	if z.closed {
		return z.err
	}
	z.closeEntry()
	z.closed = true
	if err := z.zw.Close(); err != nil && z.err == nil {
		z.err = fmt.Errorf("confwriter: finish archive: %w", err)
	}
	return z.err
}

// startEntry closes the current entry and opens name. It reports whether
// the new entry could be opened.
func (z *ZipWriter) startEntry(name string) bool {
	z.closeEntry()
	if z.closed {
		return false
	}
	w, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: z.now(),
	})
	if err != nil {
		z.logger.Debug("confwriter: open archive entry", "entry", name, "error", err)
		return false
	}
	z.out.w = w
	return true
}

func (z *ZipWriter) closeEntry() {
	if z.err == nil {
		z.err = z.bw.Flush()
	}
	z.out.w = nil
}

func (z *ZipWriter) copyAttachment(ctx context.Context, u *url.URL) {
	rc, err := z.open(ctx, u)
	if err != nil {
		z.logger.Debug("confwriter: open attachment", "url", u.Redacted(), "error", err)
		return
	}
	defer rc.Close()
	if _, err := io.Copy(z.out.w, rc); err != nil {
		z.logger.Debug("confwriter: copy attachment", "url", u.Redacted(), "error", err)
	}
}

// attachmentName is the last path segment of u, or a generated name when
// the locator has none.
func (z *ZipWriter) attachmentName(u *url.URL) string {
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	if p == "" {
		return z.newName()
	}
	return p
}
