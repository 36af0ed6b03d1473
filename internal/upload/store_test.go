package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fileHeader builds a real *multipart.FileHeader by round-tripping a form
// through the http machinery.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "/uploads", 64, 128)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestSaveImageGeneratesUniqueName(t *testing.T) {
	s := newTestStore(t)

	fh := fileHeader(t, "poster.PNG", []byte("fake image bytes"))
	p, err := s.SaveImage(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(p, "/uploads/") {
		t.Errorf("public path = %q, want /uploads/ prefix", p)
	}
	if !strings.HasSuffix(p, ".png") {
		t.Errorf("public path = %q, want lowercased .png suffix", p)
	}
	if strings.Contains(p, "poster") {
		t.Errorf("public path %q leaks the client filename", p)
	}

	onDisk := filepath.Join(s.BaseDir, filepath.Base(p))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("stored content mismatch")
	}
}

func TestSaveImageRejectsExtension(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"script.exe", "page.html", "clip.mp4", "noext"} {
		if _, err := s.SaveImage(fileHeader(t, name, []byte("x"))); err != ErrExtension {
			t.Errorf("%s: err = %v, want ErrExtension", name, err)
		}
	}
	// Nothing may be written on rejection.
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d entries, want 0", len(entries))
	}
}

func TestSaveVideoAcceptsVideoExtensions(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"a.mp4", "b.webm", "c.ogg", "d.mov", "e.avi"} {
		if _, err := s.SaveVideo(fileHeader(t, name, []byte("v"))); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := s.SaveVideo(fileHeader(t, "poster.png", []byte("v"))); err != ErrExtension {
		t.Errorf("png as video: err = %v, want ErrExtension", err)
	}
}

func TestSaveImageSizeCeiling(t *testing.T) {
	s := newTestStore(t) // image limit 64 bytes

	if _, err := s.SaveImage(fileHeader(t, "big.jpg", bytes.Repeat([]byte("x"), 65))); err != ErrTooLarge {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if _, err := s.SaveImage(fileHeader(t, "fits.jpg", bytes.Repeat([]byte("x"), 64))); err != nil {
		t.Fatalf("at limit: %v", err)
	}
}

func TestAllowedHelpers(t *testing.T) {
	if !AllowedImage("x.WEBP") {
		t.Error("AllowedImage should be case-insensitive")
	}
	if AllowedImage("x.mp4") {
		t.Error("mp4 is not an image")
	}
	if !AllowedVideo("x.Mov") {
		t.Error("AllowedVideo should be case-insensitive")
	}
	if AllowedVideo("x.gif") {
		t.Error("gif is not a video")
	}
}
