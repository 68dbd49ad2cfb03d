package frame

// streaming.go cleans CSV input on the fly: a leading UTF-8 byte order mark
// is dropped and invalid UTF-8 bytes are replaced with '?'. Both wrappers hold
// at most a few bytes of state, so inputs of any size stream through.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader that drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?'. A multi-byte sequence
// split across two reads of the underlying reader is carried over rather than
// replaced. Cleaned bytes that do not fit the caller's buffer are kept for
// the next Read, so any buffer size works.
type UTF8Sanitizer struct {
	r       io.Reader
	buf     []byte
	out     []byte // cleaned bytes not yet returned; aliases buf
	pending []byte // truncated trailing sequence from the last fill
	err     error  // sticky error from r
}

const sanitizerBufSize = 4096

// maxEmptyReads bounds how often the underlying reader may return 0, nil in
// a row before Read gives up with io.ErrNoProgress, as bufio does.
const maxEmptyReads = 100

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		r:       r,
		buf:     make([]byte, sanitizerBufSize),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader. It returns data whenever some is buffered and
// reports the underlying error only once everything before it was delivered.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for empty := 0; len(s.out) == 0; empty++ {
		if s.err != nil {
			return 0, s.err
		}
		if empty >= maxEmptyReads {
			return 0, io.ErrNoProgress
		}
		s.fill()
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// fill reads once from r into buf, after any pending bytes, and cleans the
// result into out.
func (s *UTF8Sanitizer) fill() {
	k := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(s.buf[k:])
	n += k
	s.err = err

	data := s.buf[:n]
	if asciiOnly(data) {
		s.out = data
		return
	}
	s.out = data[:s.sanitize(data, err != nil)]
}

// sanitize rewrites data in place and returns the number of bytes to emit.
// Unless atEOF, a truncated trailing sequence is moved to pending.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	w := 0
	for r := 0; r < len(data); {
		if data[r] < utf8.RuneSelf {
			data[w] = data[r]
			w++
			r++
			continue
		}
		if !atEOF && !utf8.FullRune(data[r:]) {
			s.pending = append(s.pending, data[r:]...)
			return w
		}
		c, size := utf8.DecodeRune(data[r:])
		if c == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			r++
			continue
		}
		copy(data[w:], data[r:r+size])
		w += size
		r += size
	}
	return w
}

func asciiOnly(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// CleanInput applies SkipBOM then NewUTF8Sanitizer.
func CleanInput(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(SkipBOM(r))
}
