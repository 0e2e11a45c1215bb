package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"tadbeer-server/models"
	"time"

	"golang.org/x/exp/slices"
)

// Upload categories. Handlers pick the category from the operation being
// performed, never from request input.
const (
	CategorySignup         = "signup"
	CategoryScholarships   = "scholarships"
	CategoryBusinessGrants = "businessGrants"
	CategoryConsultations  = "others"
	CategoryPayments       = "payments"
)

var uploadCategories = []string{
	CategorySignup,
	CategoryScholarships,
	CategoryBusinessGrants,
	CategoryConsultations,
	CategoryPayments,
}

// MaxUploadSize is the single per-file ceiling for every category.
const MaxUploadSize = 10 << 20 // 10 MB

var allowedUploadExtensions = []string{".jpeg", ".jpg", ".png", ".pdf", ".webp", ".doc", ".docx"}

var (
	ErrUnsupportedFileType = errors.New("only JPEG, PNG, WEBP, PDF, or Word files are allowed")
	ErrFileTooLarge        = fmt.Errorf("file exceeds the %d MB upload limit", MaxUploadSize>>20)
	ErrFileNotFound        = errors.New("file not found")
)

var uploadRoot string

// InitializeUploads prepares the on-disk category folders under UPLOAD_DIR
// (default ./uploads).
func InitializeUploads() {
	root := os.Getenv("UPLOAD_DIR")
	if root == "" {
		root = "uploads"
	}
	for _, category := range uploadCategories {
		if err := os.MkdirAll(filepath.Join(root, category), 0o755); err != nil {
			panic("cannot create upload directory: " + err.Error())
		}
	}
	uploadRoot = root
}

// SaveUpload persists one multipart file under the given category and returns
// its document metadata. The stored path is always /files/<category>/<name>
// so it doubles as the URL suffix.
func SaveUpload(category, field string, header *multipart.FileHeader) (*models.Document, error) {
	if !slices.Contains(uploadCategories, category) {
		return nil, fmt.Errorf("unknown upload category %q", category)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(allowedUploadExtensions, ext) {
		return nil, ErrUnsupportedFileType
	}
	if header.Size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := generatedFileName(field, ext)
	dst, err := os.Create(filepath.Join(uploadRoot, category, name))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return nil, err
	}

	fileType := header.Header.Get("Content-Type")
	if fileType == "" {
		fileType = mime.TypeByExtension(ext)
	}

	return &models.Document{
		FileName: header.Filename,
		FilePath: "/files/" + category + "/" + name,
		FileType: fileType,
		FileSize: header.Size,
	}, nil
}

// ResolveFile maps a category + generated filename back to a disk path,
// refusing traversal outside the upload root and missing files.
func ResolveFile(category, filename string) (string, error) {
	if !slices.Contains(uploadCategories, category) {
		return "", ErrFileNotFound
	}
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrFileNotFound
	}

	path := filepath.Join(uploadRoot, category, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrFileNotFound
	}
	return path, nil
}

// FileContentType infers the Content-Type to serve a stored file with.
func FileContentType(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// generatedFileName is collision resistant: field-timestamp-random + the
// original extension, matching the stored /files URL contract.
func generatedFileName(field, ext string) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixNano(), hex.EncodeToString(suffix), ext)
}
