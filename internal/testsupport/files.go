package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// PDFBytes returns a payload of the requested total size that starts with a
// PDF magic header, so content sniffing treats it as a PDF download.
func PDFBytes(size int64) []byte {
	header := []byte("%PDF-1.4\n")
	if size < int64(len(header)) {
		return header[:size]
	}
	buf := make([]byte, size)
	copy(buf, header)
	for i := int64(len(header)); i < size; i++ {
		buf[i] = 0x42
	}
	return buf
}

// WritePDF writes a PDF-flavored payload of the requested total size.
func WritePDF(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, PDFBytes(size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
