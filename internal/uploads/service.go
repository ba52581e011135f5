package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cafemenu/cafemenu-backend/pkg/config"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
)

// FileUpload carries one multipart file. Content is read once; Size comes
// from the multipart header and is re-checked while copying.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Service stores uploaded images on the local filesystem and hands back the
// public path they are served under.
type Service interface {
	SaveImage(ctx context.Context, file FileUpload) (string, error)
	SaveImages(ctx context.Context, files []FileUpload) ([]string, error)
	Delete(ctx context.Context, fileName string) error

	// SaveRaw writes already-decoded bytes, used by the base64 migration.
	SaveRaw(ctx context.Context, prefix, extension string, data []byte) (string, error)
	CountFiles(ctx context.Context) (int, error)
	RemoveAll(ctx context.Context) (int, error)
}

type service struct {
	dir        string
	publicPath string
	maxBytes   int64
	maxBatch   int
}

// NewService creates the uploads directory if it is missing.
func NewService(cfg config.UploadsConfig) (Service, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("uploads dir required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &service{
		dir:        cfg.Dir,
		publicPath: cfg.PublicPath,
		maxBytes:   cfg.MaxUploadBytes(),
		maxBatch:   cfg.MaxBatchFiles,
	}, nil
}

func (s *service) SaveImage(ctx context.Context, file FileUpload) (string, error) {
	if file.Content == nil || file.Size == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "no file uploaded")
	}
	if err := s.validate(file); err != nil {
		return "", err
	}
	return s.write(file)
}

// SaveImages stores up to the configured batch size. Files saved before a
// later one fails validation stay on disk.
func (s *service) SaveImages(ctx context.Context, files []FileUpload) ([]string, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no files uploaded")
	}
	if len(files) > s.maxBatch {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("maximum %d files allowed", s.maxBatch))
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file.Content == nil || file.Size == 0 {
			continue
		}
		if err := s.validate(file); err != nil {
			return nil, err
		}
		url, err := s.write(file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *service) Delete(ctx context.Context, fileName string) error {
	cleaned, err := safeFileName(fileName)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, cleaned)); err != nil {
		if os.IsNotExist(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting file")
	}
	return nil
}

func (s *service) SaveRaw(ctx context.Context, prefix, extension string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s.%s", prefix, uuid.NewString(), extension)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing file")
	}
	return s.publicURL(name), nil
}

func (s *service) CountFiles(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading uploads dir")
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			count++
		}
	}
	return count, nil
}

// RemoveAll deletes every uploaded file, skipping the ones it cannot remove,
// and reports how many went away.
func (s *service) RemoveAll(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading uploads dir")
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *service) validate(file FileUpload) error {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file %s must be an image", file.Name))
	}
	if file.Size > s.maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file %s size must be less than %dMB", file.Name, s.maxBytes/(1024*1024)))
	}
	return nil
}

func (s *service) write(file FileUpload) (string, error) {
	name := uuid.NewString() + sanitizeExtension(file.Name)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating file")
	}
	defer dst.Close()

	// The multipart header size is client-supplied; cap the copy too.
	written, err := io.Copy(dst, io.LimitReader(file.Content, s.maxBytes+1))
	if err != nil {
		os.Remove(filepath.Join(s.dir, name))
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving file")
	}
	if written > s.maxBytes {
		os.Remove(filepath.Join(s.dir, name))
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file %s size must be less than %dMB", file.Name, s.maxBytes/(1024*1024)))
	}

	return s.publicURL(name), nil
}

func (s *service) publicURL(name string) string {
	return path.Join(s.publicPath, name)
}

// sanitizeExtension keeps only a simple trailing extension from the client
// filename; everything else in the stored name is server-generated.
func sanitizeExtension(clientName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(clientName)))
	if ext == "" || ext == "." {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func safeFileName(fileName string) (string, error) {
	cleaned := filepath.Base(strings.TrimSpace(fileName))
	if cleaned == "" || cleaned == "." || cleaned == ".." ||
		cleaned != fileName || strings.ContainsAny(cleaned, `/\`) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid file name")
	}
	return cleaned, nil
}
