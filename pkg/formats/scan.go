package formats

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

const maxLineBytes = 16 << 20

const utf8BOM = "\ufeff"

// lineScanner yields whitespace-separated fields of logical lines,
// joining backslash continuations and dropping comments.
type lineScanner struct {
	sc    *bufio.Scanner
	line  int // last physical line consumed
	start int // first physical line of the current logical line
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineScanner{sc: sc}
}

// Next returns the fields of the next non-empty logical line.
func (s *lineScanner) Next() ([]string, bool) {
	var buf strings.Builder
	for s.sc.Scan() {
		s.line++
		if buf.Len() == 0 {
			s.start = s.line
		}

		text := s.sc.Text()
		if s.line == 1 {
			text = strings.TrimPrefix(text, utf8BOM)
		}
		text = strings.TrimRight(text, " \t")
		if strings.HasSuffix(text, "\\") {
			buf.WriteString(text[:len(text)-1])
			buf.WriteByte(' ')
			continue
		}
		buf.WriteString(text)

		fields := splitFields(buf.String())
		buf.Reset()
		if len(fields) > 0 {
			return fields, true
		}
	}

	if buf.Len() > 0 {
		if fields := splitFields(buf.String()); len(fields) > 0 {
			return fields, true
		}
	}
	return nil, false
}

// Line returns the line number where the current logical line started.
func (s *lineScanner) Line() int {
	return s.start
}

// Err reports a read failure, mapping oversized lines to ErrLineTooLong.
func (s *lineScanner) Err() error {
	err := s.sc.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		return ErrLineTooLong
	}
	return err
}

func splitFields(line string) []string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.Fields(line)
}

// parseFloats parses between min and max leading operands as float32.
func parseFloats(operands []string, min, max int) ([]float32, error) {
	if len(operands) < min {
		return nil, ErrMissingOperand
	}
	n := len(operands)
	if n > max {
		n = max
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(operands[i], 32)
		if err != nil {
			return nil, ErrMalformedNumber
		}
		out[i] = float32(v)
	}
	return out, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 32)
	return err == nil
}
