package printers

import (
	"context"
	"math"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hazyhaar/confstatus/printer"
)

// Runtime prints the Go runtime, host and memory statistics.
type Runtime struct {
	start time.Time
	now   func() time.Time
}

// NewRuntime returns a runtime printer for a process started at start.
func NewRuntime(start time.Time) *Runtime {
	return &Runtime{start: start, now: time.Now}
}

func (r *Runtime) Title() string { return "%runtime.title" }

func (r *Runtime) PrintConfiguration(_ context.Context, w printer.Writer) error {
	host, err := os.Hostname()
	if err != nil {
		host = ""
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	printer.InfoLine(w, "", "Go version", runtime.Version())
	printer.InfoLine(w, "", "Platform", runtime.GOOS+"/"+runtime.GOARCH)
	printer.InfoLine(w, "", "Host", nonEmpty(host))
	printer.InfoLine(w, "", "PID", os.Getpid())
	printer.InfoLine(w, "", "Started", r.start.Format(time.RFC3339)+" ("+humanize.RelTime(r.start, r.now(), "ago", "from now")+")")
	printer.InfoLine(w, "", "CPUs", runtime.NumCPU())
	printer.InfoLine(w, "", "GOMAXPROCS", runtime.GOMAXPROCS(0))
	printer.InfoLine(w, "", "Goroutines", runtime.NumGoroutine())
	printer.InfoLine(w, "", "GOGC", envOr("GOGC", "100"))
	printer.InfoLine(w, "", "Memory limit", memoryLimit())
	w.Println()
	w.Println("Memory")
	printer.InfoLine(w, "  ", "Heap in use", humanize.IBytes(ms.HeapInuse))
	printer.InfoLine(w, "  ", "Heap objects", humanize.Comma(int64(ms.HeapObjects)))
	printer.InfoLine(w, "  ", "Stack in use", humanize.IBytes(ms.StackInuse))
	printer.InfoLine(w, "  ", "Obtained from OS", humanize.IBytes(ms.Sys))
	printer.InfoLine(w, "  ", "Total allocated", humanize.IBytes(ms.TotalAlloc))
	printer.InfoLine(w, "  ", "GC cycles", ms.NumGC)
	if ms.LastGC > 0 {
		printer.InfoLine(w, "  ", "Last GC", humanize.RelTime(time.Unix(0, int64(ms.LastGC)), r.now(), "ago", "from now"))
	}
	return nil
}

// memoryLimit reads the soft memory limit without changing it.
func memoryLimit() string {
	limit := debug.SetMemoryLimit(-1)
	if limit == math.MaxInt64 {
		return "none"
	}
	return humanize.IBytes(uint64(limit))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
