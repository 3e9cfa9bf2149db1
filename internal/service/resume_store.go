package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrResumeRequired    = errors.New("resume file is required")
	ErrInvalidFileFormat = errors.New("invalid file format. only .pdf, .doc, .docx are allowed")
	ErrFileSizeExceeded  = errors.New("file size exceeds limit")
)

// PublicUploadsPrefix is the URL prefix the uploads directory is served under.
const PublicUploadsPrefix = "uploads"

const resumesSubdir = "resumes"

var allowedResumeExts = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// StoredResume locates a saved resume on disk and under the public prefix.
type StoredResume struct {
	DiskPath   string
	PublicPath string
}

// ResumeStore saves candidate resumes below a base uploads directory.
type ResumeStore struct {
	baseDir  string
	maxBytes int64
}

// NewResumeStore creates a ResumeStore rooted at baseDir
func NewResumeStore(baseDir string, maxBytes int64) *ResumeStore {
	return &ResumeStore{baseDir: baseDir, maxBytes: maxBytes}
}

// Validate checks presence, extension and size without touching the disk.
func (s *ResumeStore) Validate(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return ErrResumeRequired
	}
	if s.maxBytes > 0 && fileHeader.Size > s.maxBytes {
		return ErrFileSizeExceeded
	}
	if !allowedResumeExts[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		return ErrInvalidFileFormat
	}
	return nil
}

// Save validates and writes the upload as resumes/<uuid>-<name>.
func (s *ResumeStore) Save(fileHeader *multipart.FileHeader) (*StoredResume, error) {
	if err := s.Validate(fileHeader); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.baseDir, resumesSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	fileName := uuid.NewString() + "-" + sanitizeFileName(fileHeader.Filename)
	diskPath := filepath.Join(dir, fileName)

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file on server: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(diskPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(diskPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredResume{
		DiskPath:   diskPath,
		PublicPath: path.Join(PublicUploadsPrefix, resumesSubdir, fileName),
	}, nil
}

// Remove deletes a stored resume. A file that is already gone is not an error.
func (s *ResumeStore) Remove(stored *StoredResume) error {
	if stored == nil {
		return nil
	}
	if err := os.Remove(stored.DiskPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stored resume: %w", err)
	}
	return nil
}

// sanitizeFileName keeps the base name and replaces anything outside
// [A-Za-z0-9._-] so the stored name is safe in a URL.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || name == "." || name == "/" {
		return "resume"
	}
	return b.String()
}
