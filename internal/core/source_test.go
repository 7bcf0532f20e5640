package core

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestOpenSource_Plain(t *testing.T) {
	content := []byte("code,product_name\n123,Oats\n")
	path := writeTempFile(t, "plain.csv", content)

	src, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
	if src.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", src.Size, len(content))
	}
	if src.BytesRead() != int64(len(content)) {
		t.Errorf("BytesRead() = %d, want %d", src.BytesRead(), len(content))
	}
	if src.Percent() != 100 {
		t.Errorf("Percent() = %v, want 100", src.Percent())
	}
}

func TestOpenSource_Gzip(t *testing.T) {
	content := []byte("code\thappy\n42\tyes\n")
	path := writeTempFile(t, "data.csv.gz", gzipBytes(t, content))

	src, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestOpenSource_StripsBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("code\n1\n")...)
	path := writeTempFile(t, "bom.csv", content)

	src, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "code\n1\n" {
		t.Errorf("content = %q, want BOM removed", got)
	}
}

func TestOpenSource_SanitizesInvalidUTF8(t *testing.T) {
	content := []byte("code,name\n1,caf\xff\n")
	path := writeTempFile(t, "bad.csv", content)

	src, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !strings.Contains(string(got), "caf?") {
		t.Errorf("content = %q, want invalid byte replaced with ?", got)
	}
}

func TestOpenSource_Missing(t *testing.T) {
	if _, err := OpenSource(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("OpenSource() should fail for missing file")
	}
}

func TestOpenSource_WrongExtension(t *testing.T) {
	path := writeTempFile(t, "data.txt", []byte("code\n"))
	if _, err := OpenSource(path); err == nil {
		t.Fatal("OpenSource() should fail for unsupported extension")
	}
}

func TestOpenSource_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub.csv")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := OpenSource(dir); err == nil {
		t.Fatal("OpenSource() should fail for a directory")
	}
}

func TestUTF8Sanitizer_MultibyteAcrossReads(t *testing.T) {
	// "é" is 0xC3 0xA9; force a split across two reads.
	data := []byte("caf\xc3\xa9!")
	s := newUTF8Sanitizer(&chunkReader{data: data, chunk: 4})

	got, err := io.ReadAll(s)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "café!" {
		t.Errorf("content = %q, want %q", got, "café!")
	}
}

// chunkReader yields at most chunk bytes per Read to exercise sequences
// split across reads.
type chunkReader struct {
	data  []byte
	chunk int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}
