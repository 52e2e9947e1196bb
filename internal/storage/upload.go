package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize - лимит размера видеофайла (100MB).
const MaxUploadSize = 100 << 20

var ErrUnsupportedFormat = errors.New("only video files are allowed")

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".mkv":  true,
}

// UploadedFile - ссылка на сохраненный файл, которую каталог
// только читает и отдает, не управляя самими байтами.
type UploadedFile struct {
	Filename     string
	Path         string
	Size         int64
	OriginalName string
	ContentType  string
}

// SaveVideoFile проверяет расширение и размер, затем кладет файл в dir
// под уникальным именем (uuid), чтобы загрузки не перетирали друг друга.
func SaveVideoFile(dir string, file multipart.File, header *multipart.FileHeader) (UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return UploadedFile{}, ErrUnsupportedFormat
	}
	if header.Size > MaxUploadSize {
		return UploadedFile{}, fmt.Errorf("file too large: %d bytes", header.Size)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadedFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	filename := "video-" + uuid.NewString() + ext
	path := filepath.Join(dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(path)
		return UploadedFile{}, fmt.Errorf("write file: %w", err)
	}

	return UploadedFile{
		Filename:     filename,
		Path:         path,
		Size:         size,
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
	}, nil
}
