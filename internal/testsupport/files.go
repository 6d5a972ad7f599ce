package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// PNGHeader is enough of a PNG for content sniffing.
var PNGHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// PDFHeader is enough of a PDF for content sniffing.
var PDFHeader = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

// WriteFile writes data to path, creating parent directories. Empty data
// writes a single byte.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if len(data) == 0 {
		data = []byte{0x42}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
