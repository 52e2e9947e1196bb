package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func makeUpload(t *testing.T, filename, content string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	mw.Close()

	reader := multipart.NewReader(&buf, mw.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("failed to read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	header := form.File["video"][0]
	file, err := header.Open()
	if err != nil {
		t.Fatalf("failed to open form file: %v", err)
	}
	t.Cleanup(func() { file.Close() })

	return file, header
}

func TestSaveVideoFile_RejectsNonVideo(t *testing.T) {
	file, header := makeUpload(t, "notes.txt", "hello")

	_, err := SaveVideoFile(t.TempDir(), file, header)
	if err != ErrUnsupportedFormat {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSaveVideoFile_SavesWithUniqueName(t *testing.T) {
	dir := t.TempDir()
	content := "fake video bytes"
	file, header := makeUpload(t, "movie.MP4", content)

	saved, err := SaveVideoFile(dir, file, header)
	if err != nil {
		t.Fatalf("SaveVideoFile returned error: %v", err)
	}

	if !strings.HasPrefix(saved.Filename, "video-") || !strings.HasSuffix(saved.Filename, ".mp4") {
		t.Errorf("Unexpected filename: %s", saved.Filename)
	}
	if saved.OriginalName != "movie.MP4" {
		t.Errorf("Expected original name preserved, got %s", saved.OriginalName)
	}
	if saved.Size != int64(len(content)) {
		t.Errorf("Expected size %d, got %d", len(content), saved.Size)
	}

	data, err := os.ReadFile(filepath.Join(dir, saved.Filename))
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if string(data) != content {
		t.Errorf("saved content mismatch")
	}
}
