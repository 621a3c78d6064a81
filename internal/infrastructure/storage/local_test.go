package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	"github.com/tasksphere/backend/domain"
)

func fileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), 64, []string{"jpg", "jpeg", "png", "pdf"})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestSave(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(fileHeader(t, "photo.PNG", "fake image bytes"), "avatars")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Filename != "photo.PNG" {
		t.Errorf("original filename = %q", saved.Filename)
	}
	if !strings.HasSuffix(saved.Path, ".png") {
		t.Errorf("stored path = %q, want a .png key", saved.Path)
	}
	if strings.Contains(saved.Path, "photo") {
		t.Errorf("stored path %q leaks the original name", saved.Path)
	}

	data, err := os.ReadFile(saved.Path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("stored content = %q", data)
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store := newTestStore(t)

	for _, filename := range []string{"script.sh", "payload.exe", "noext", "double.pdf.html"} {
		_, err := store.Save(fileHeader(t, filename, "x"), "")
		if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Errorf("Save(%q) err = %v, want INVALID", filename, err)
		}
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(fileHeader(t, "big.jpg", strings.Repeat("a", 100)), "")
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("err = %v, want INVALID for oversized file", err)
	}
}

func TestSaveRejectsNilHeader(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(nil, ""); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("err = %v, want INVALID for missing file", err)
	}
}
