package trace_test

import (
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/trace"
)

func readAll(src event.Source) ([]event.Event, error) {
	var out []event.Event
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
}

var _ = Describe("Reader", func() {
	It("should parse every record", func() {
		text := `# header
ROI_BEGIN
I 3
B 0x400 1 0x800
B 1028 0 2048

R 0x404 0x1000 8
W 0x408 0x1008 4
MALLOC 0x7f0000 64
FREE 0x7f0000
ROI_END
`
		events, err := readAll(trace.NewReader(strings.NewReader(text)))
		Expect(err).NotTo(HaveOccurred())

		Expect(events).To(Equal([]event.Event{
			event.ROIBegin(),
			event.Retire(3),
			event.Branch(0x400, true, 0x800),
			event.Branch(1028, false, 2048),
			event.Memory(0x404, 0x1000, event.Read, 8),
			event.Memory(0x408, 0x1008, event.Write, 4),
			event.Malloc(0x7f0000, 64),
			event.Free(0x7f0000),
			event.ROIEnd(),
		}))
	})

	DescribeTable("should reject malformed lines with their number",
		func(bad string, msg string) {
			r := trace.NewReader(strings.NewReader("I 0\n# ok\n" + bad + "\n"))

			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			var perr *trace.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Line).To(Equal(3))
			Expect(err.Error()).To(ContainSubstring("line 3"))
			Expect(err.Error()).To(ContainSubstring(msg))
		},
		Entry("unknown record", "X 1 2", "unknown record"),
		Entry("missing operand", "B 0x400 1", "expected 3 operands"),
		Entry("bad number", "R 0x400 zz 8", "bad number"),
		Entry("bad outcome", "B 0x400 2 0x800", "0 or 1"),
		Entry("extra operand", "ROI_BEGIN now", "expected 0 operands"),
		Entry("huge size", "W 0 0 0x100000000", "size out of range"),
		Entry("huge thread id", "I 0x80000000", "thread id out of range"),
	)

	It("should keep returning EOF at the end", func() {
		r := trace.NewReader(strings.NewReader(""))
		_, err := r.Next()
		Expect(err).To(Equal(io.EOF))
		_, err = r.Next()
		Expect(err).To(Equal(io.EOF))
	})
})

var _ = Describe("Writer", func() {
	It("should write lines the reader accepts", func() {
		events := []event.Event{
			event.ROIBegin(),
			event.Branch(0x400, true, 0x800),
			event.Memory(0x404, 0x1000, event.Write, 8),
			event.Retire(1),
			event.Malloc(0x10, 16),
			event.Free(0x10),
			event.ROIEnd(),
		}

		var buf bytes.Buffer
		w := trace.NewWriter(&buf)
		for _, ev := range events {
			Expect(w.Write(ev)).To(Succeed())
		}
		Expect(w.Flush()).To(Succeed())

		Expect(buf.String()).To(HavePrefix("ROI_BEGIN\nB 0x400 1 0x800\nW 0x404 0x1000 8\n"))

		back, err := readAll(trace.NewReader(&buf))
		Expect(err).NotTo(HaveOccurred())
		Expect(back).To(Equal(events))
	})
})
