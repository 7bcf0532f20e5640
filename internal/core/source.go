package core

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Source is an open import file ready for CSV decoding. Reads are BOM
// stripped and UTF-8 sanitized; byte counting happens at the file level,
// below any gzip layer, so progress percentages work for compressed
// exports too.
type Source struct {
	file     *os.File
	gz       *gzip.Reader
	counting *countingReader
	reader   io.Reader
	Size     int64
}

// OpenSource opens path for import. Files ending in .gz are transparently
// decompressed.
func OpenSource(path string) (*Source, error) {
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".csv.gz") && !strings.HasSuffix(lower, ".gz") {
		return nil, fmt.Errorf("unsupported source file %q: want .csv or .csv.gz", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("source %q is a directory", path)
	}

	s := &Source{
		file:     f,
		counting: &countingReader{reader: f, total: info.Size()},
		Size:     info.Size(),
	}

	var r io.Reader = s.counting
	if strings.HasSuffix(lower, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		s.gz = gz
		r = gz
	}

	s.reader = newUTF8Sanitizer(newBOMReader(r))
	return s, nil
}

func (s *Source) Read(p []byte) (int, error) { return s.reader.Read(p) }

// BytesRead reports raw file bytes consumed so far.
func (s *Source) BytesRead() int64 { return s.counting.read }

// Percent reports read progress over the raw file size, 0 when unknown.
func (s *Source) Percent() float64 {
	if s.Size <= 0 {
		return 0
	}
	return float64(s.counting.read) * 100 / float64(s.Size)
}

func (s *Source) Close() error {
	if s.gz != nil {
		s.gz.Close()
	}
	return s.file.Close()
}

type countingReader struct {
	reader io.Reader
	read   int64
	total  int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)
	return n, err
}

// bomReader strips a leading UTF-8 BOM (0xEF 0xBB 0xBF), which Windows
// tooling likes to prepend to exports.
type bomReader struct {
	reader  io.Reader
	checked bool
	held    []byte
	buf     [3]byte
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{reader: r}
}

func (r *bomReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		n, err := io.ReadFull(r.reader, r.buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n == 0 {
			return 0, err
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if !(n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF) {
			r.held = r.buf[:n]
		}
	}
	if len(r.held) > 0 {
		n := copy(p, r.held)
		r.held = r.held[n:]
		return n, nil
	}
	return r.reader.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly so a
// corrupt cell never kills the CSV decoder. Multi-byte sequences split
// across Read calls are held back until completed.
type utf8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}
	if allASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of output bytes.
// Unless atEOF, an incomplete trailing sequence is saved for the next
// read. Invalid bytes become '?' (one byte) so output never outgrows the
// buffer.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if t := trailingPartial(data); t > 0 {
				s.pending = append(s.pending, data[len(data)-t:]...)
				return len(data) - t
			}
		}
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if !atEOF && read+size >= len(data) && partialRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
		} else {
			copy(data[write:], data[read:read+size])
			write += size
			read += size
		}
	}
	return write
}

// trailingPartial returns how many bytes at the end of data begin a
// multi-byte sequence that has not finished.
func trailingPartial(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < seqLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	}
	return 4
}

func partialRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return seqLen(data[0]) > len(data)
}
