package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/tasksphere/backend/domain"
)

// SavedFile describes a file written to local disk.
type SavedFile struct {
	Filename string
	Path     string
	MimeType string
}

// FileStore writes uploaded files to a local directory, enforcing an
// extension allow-list and a size cap.
type FileStore struct {
	root        string
	maxSize     int64
	allowedExts map[string]struct{}
}

// NewFileStore builds a FileStore rooted at dir.
func NewFileStore(dir string, maxSize int64, allowedExts []string) (*FileStore, error) {
	if maxSize <= 0 {
		maxSize = 2 << 20
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	exts := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	return &FileStore{
		root:        dir,
		maxSize:     maxSize,
		allowedExts: exts,
	}, nil
}

// Save validates and persists the uploaded file under root/subdir, keyed by a
// fresh uuid so original names never collide or escape the directory.
func (fs *FileStore) Save(header *multipart.FileHeader, subdir string) (*SavedFile, error) {
	if header == nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "no file uploaded")
	}
	if header.Size > fs.maxSize {
		return nil, domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("file exceeds the %d byte limit", fs.maxSize))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if _, ok := fs.allowedExts[ext]; !ok {
		return nil, domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("file type %q is not allowed", ext))
	}

	dir := fs.root
	if subdir != "" {
		dir = filepath.Join(fs.root, subdir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	stored := fmt.Sprintf("%s.%s", uuid.NewString(), ext)
	dest := filepath.Join(dir, stored)
	if err := fasthttp.SaveMultipartFile(header, dest); err != nil {
		return nil, err
	}

	return &SavedFile{
		Filename: header.Filename,
		Path:     filepath.ToSlash(dest),
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}
