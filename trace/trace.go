// Package trace reads and writes the line-oriented text trace format.
//
// Each line holds one event; blank lines and lines starting with '#' are
// skipped. Numbers are decimal or 0x-prefixed hex.
//
//	I <thread>              instruction retired
//	B <pc> <0|1> <target>   branch and its outcome
//	R <pc> <addr> <size>    memory read
//	W <pc> <addr> <size>    memory write
//	ROI_BEGIN
//	ROI_END
//	MALLOC <addr> <size>
//	FREE <addr>
package trace

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sarchlab/tracesim/event"
)

// ParseError reports a malformed line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var _ event.Source = (*Reader)(nil)

// Reader is an event.Source over a text trace.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader creates a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Reader{sc: sc}
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next event, or io.EOF when the trace is exhausted.
func (r *Reader) Next() (event.Event, error) {
	for r.sc.Scan() {
		r.line++

		text := strings.TrimSpace(r.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ev, err := parseLine(strings.Fields(text))
		if err != nil {
			return event.Event{}, &ParseError{Line: r.line, Text: text, Err: err}
		}

		return ev, nil
	}

	if err := r.sc.Err(); err != nil {
		return event.Event{}, fmt.Errorf("failed to read trace: %w", err)
	}

	return event.Event{}, io.EOF
}

func parseLine(fields []string) (event.Event, error) {
	op, args := fields[0], fields[1:]

	switch op {
	case "I":
		n, err := parseArgs(args, 1)
		if err != nil {
			return event.Event{}, err
		}
		if n[0] > math.MaxInt32 {
			return event.Event{}, fmt.Errorf("thread id out of range")
		}
		return event.Retire(int(n[0])), nil
	case "B":
		n, err := parseArgs(args, 3)
		if err != nil {
			return event.Event{}, err
		}
		if n[1] > 1 {
			return event.Event{}, fmt.Errorf("branch outcome must be 0 or 1")
		}
		return event.Branch(n[0], n[1] == 1, n[2]), nil
	case "R", "W":
		n, err := parseArgs(args, 3)
		if err != nil {
			return event.Event{}, err
		}
		if n[2] > 0xffffffff {
			return event.Event{}, fmt.Errorf("access size out of range")
		}
		kind := event.Read
		if op == "W" {
			kind = event.Write
		}
		return event.Memory(n[0], n[1], kind, uint32(n[2])), nil
	case "ROI_BEGIN":
		if _, err := parseArgs(args, 0); err != nil {
			return event.Event{}, err
		}
		return event.ROIBegin(), nil
	case "ROI_END":
		if _, err := parseArgs(args, 0); err != nil {
			return event.Event{}, err
		}
		return event.ROIEnd(), nil
	case "MALLOC":
		n, err := parseArgs(args, 2)
		if err != nil {
			return event.Event{}, err
		}
		return event.Malloc(n[0], n[1]), nil
	case "FREE":
		n, err := parseArgs(args, 1)
		if err != nil {
			return event.Event{}, err
		}
		return event.Free(n[0]), nil
	default:
		return event.Event{}, fmt.Errorf("unknown record %q", op)
	}
}

func parseArgs(args []string, want int) ([]uint64, error) {
	if len(args) != want {
		return nil, fmt.Errorf("expected %d operands, got %d", want, len(args))
	}

	out := make([]uint64, want)
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", a)
		}
		out[i] = v
	}

	return out, nil
}

// Format renders ev as one trace line, without the newline.
func Format(ev event.Event) string {
	switch ev.Kind {
	case event.KindBranch:
		taken := 0
		if ev.Branch.Taken {
			taken = 1
		}
		return fmt.Sprintf("B 0x%x %d 0x%x", ev.Branch.PC, taken, ev.Branch.Target)
	case event.KindMemory:
		return fmt.Sprintf("%s 0x%x 0x%x %d",
			ev.Memory.Kind, ev.Memory.PC, ev.Memory.Addr, ev.Memory.Size)
	case event.KindRetire:
		return fmt.Sprintf("I %d", ev.Thread)
	case event.KindROIBegin:
		return "ROI_BEGIN"
	case event.KindROIEnd:
		return "ROI_END"
	case event.KindMalloc:
		return fmt.Sprintf("MALLOC 0x%x %d", ev.Alloc.Addr, ev.Alloc.Size)
	case event.KindFree:
		return fmt.Sprintf("FREE 0x%x", ev.Alloc.Addr)
	default:
		return "# " + ev.Kind.String()
	}
}

// Writer writes events as trace lines.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends ev.
func (w *Writer) Write(ev event.Event) error {
	if _, err := w.w.WriteString(Format(ev)); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush writes any buffered lines.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
