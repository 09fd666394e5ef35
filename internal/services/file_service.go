package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Size ceilings for uploaded files.
const (
	MaxCoverSize = 5 << 20  // 5 MB
	MaxPdfSize   = 50 << 20 // 50 MB
)

const (
	coverUploadDir = "guides/covers"
	pdfUploadDir   = "guides/pdfs"
)

var allowedCoverExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Upload is a fully-buffered file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FileStore writes uploads under a root directory and serves relative
// paths back to the database layer.
type FileStore struct {
	Root string
}

// ValidateCover checks a cover image upload. Returns a field-level
// message, never a fatal error.
func ValidateCover(f *Upload) error {
	if f == nil || len(f.Data) == 0 {
		return fmt.Errorf("cover image is required")
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))
	ok := false
	for _, allowed := range allowedCoverExtensions {
		if ext == allowed {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("cover image must be one of: %s", strings.Join(allowedCoverExtensions, ", "))
	}
	if len(f.Data) > MaxCoverSize {
		return fmt.Errorf("cover image exceeds %d MB", MaxCoverSize>>20)
	}
	return nil
}

// ValidatePdf checks a PDF upload: extension, declared MIME type and size.
func ValidatePdf(f *Upload) error {
	if f == nil || len(f.Data) == 0 {
		return fmt.Errorf("pdf file is required")
	}
	if strings.ToLower(filepath.Ext(f.Filename)) != ".pdf" {
		return fmt.Errorf("file must have a .pdf extension")
	}
	if f.ContentType != "application/pdf" {
		return fmt.Errorf("file must be of type application/pdf")
	}
	if len(f.Data) > MaxPdfSize {
		return fmt.Errorf("pdf exceeds %d MB", MaxPdfSize>>20)
	}
	return nil
}

// SaveCover validates and writes a cover image, returning its relative
// storage path.
func (fs *FileStore) SaveCover(db *gorm.DB, f *Upload) (string, error) {
	if err := ValidateCover(f); err != nil {
		return "", &ValidationError{Fields: map[string]string{"cover": err.Error()}}
	}
	relPath, err := fs.save(coverUploadDir, f)
	if err != nil {
		LogError(db, fmt.Sprintf("Error saving cover image: %s", f.Filename), err.Error(), "FileStore")
		return "", err
	}
	LogInfo(db, fmt.Sprintf("Cover image uploaded: %s", relPath), "FileStore")
	return relPath, nil
}

// SavePdf validates and writes a PDF, returning its relative storage path.
func (fs *FileStore) SavePdf(db *gorm.DB, f *Upload) (string, error) {
	if err := ValidatePdf(f); err != nil {
		return "", &ValidationError{Fields: map[string]string{"pdf": err.Error()}}
	}
	relPath, err := fs.save(pdfUploadDir, f)
	if err != nil {
		LogError(db, fmt.Sprintf("Error saving pdf: %s", f.Filename), err.Error(), "FileStore")
		return "", err
	}
	LogInfo(db, fmt.Sprintf("PDF uploaded: %s", relPath), "FileStore")
	return relPath, nil
}

func (fs *FileStore) save(subdir string, f *Upload) (string, error) {
	dir := filepath.Join(fs.Root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(f.Filename))
	if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return "/" + filepath.ToSlash(filepath.Join(subdir, name)), nil
}

// Delete removes a stored file. Best-effort: a missing file or any
// filesystem error is reported as false, never raised.
func (fs *FileStore) Delete(db *gorm.DB, relPath string) bool {
	if relPath == "" {
		return false
	}
	full := fs.FullPath(relPath)
	if _, err := os.Stat(full); err != nil {
		return false
	}
	if err := os.Remove(full); err != nil {
		LogError(db, fmt.Sprintf("Error deleting file: %s", relPath), err.Error(), "FileStore")
		return false
	}
	LogInfo(db, fmt.Sprintf("File deleted: %s", relPath), "FileStore")
	return true
}

// FullPath resolves a stored relative path under the store root.
func (fs *FileStore) FullPath(relPath string) string {
	return filepath.Join(fs.Root, strings.TrimPrefix(relPath, "/"))
}
