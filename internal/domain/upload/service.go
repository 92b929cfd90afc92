// internal/domain/upload/service.go
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/pkg/format"
)

var (
	ErrFileTooLarge     = errors.New("file is too large")
	ErrExtensionBlocked = errors.New("file type is not allowed")
	ErrEmptyFile        = errors.New("file is empty")
)

// Service stores uploaded images on local disk
type Service struct {
	db     *gorm.DB
	config config.UploadConfig
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg config.UploadConfig) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Request describes one incoming file
type Request struct {
	File       io.Reader
	Filename   string
	Size       int64
	UploadedBy int64
}

// Upload validates and stores a file and returns its public record
func (s *Service) Upload(req *Request) (*UploadedFile, error) {
	if err := s.validateFile(req.Filename, req.Size); err != nil {
		return nil, err
	}

	filename := generateUniqueFilename(req.Filename)
	fullPath := filepath.Join(s.config.LocalPath, filename)

	if err := os.MkdirAll(s.config.LocalPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	// One extra byte detects a body larger than the declared size
	written, err := io.Copy(dst, io.LimitReader(req.File, s.config.MaxSize+1))
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if written > s.config.MaxSize {
		os.Remove(fullPath)
		return nil, fmt.Errorf("%w: limit %s", ErrFileTooLarge, format.FileSize(s.config.MaxSize))
	}

	uploaded := UploadedFile{
		OriginalName: req.Filename,
		Filename:     filename,
		URL:          s.config.PublicBaseURL + "/" + filename,
		MimeType:     mimeType(filename),
		Size:         written,
		UploadedBy:   req.UploadedBy,
	}

	if err := s.db.Create(&uploaded).Error; err != nil {
		// Clean up file if database insert fails
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file info: %w", err)
	}

	return &uploaded, nil
}

func (s *Service) validateFile(filename string, size int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if size > s.config.MaxSize {
		return fmt.Errorf("%w: limit %s", ErrFileTooLarge, format.FileSize(s.config.MaxSize))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range s.config.AllowedExtensions {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrExtensionBlocked, ext)
}

func generateUniqueFilename(original string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(original))
}

func mimeType(filename string) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}
