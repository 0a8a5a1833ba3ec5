package gcp

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

// localBucketService stores objects under <dir>/<category>/<key> for development.
// The HTTP router serves <dir> at the path of baseURL.
type localBucketService struct {
	log     *logger.Logger
	dir     string
	baseURL string
}

func NewLocalBucketService(log *logger.Logger, cfg BucketConfig) (BucketService, error) {
	dir := strings.TrimSpace(cfg.LocalDir)
	if dir == "" {
		dir = "data/media"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.LocalBaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8080/media"
	}
	serviceLog := log.With("service", "LocalBucketService")
	serviceLog.Info("Object storage initialized", "mode", ObjectStorageModeLocal, "dir", dir, "base_url", baseURL)
	return &localBucketService{log: serviceLog, dir: dir, baseURL: baseURL}, nil
}

func (ls *localBucketService) path(category BucketCategory, key string) (string, error) {
	switch category {
	case BucketCategoryAvatar, BucketCategoryPostImage:
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("empty object key")
	}
	return filepath.Join(ls.dir, string(category), filepath.FromSlash(clean)), nil
}

func (ls *localBucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	p, err := ls.path(category, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write local object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (ls *localBucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	p, err := ls.path(category, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("delete local object %q: %w", key, err)
	}
	return nil
}

func (ls *localBucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	p, err := ls.path(category, key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (ls *localBucketService) ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error) {
	root := filepath.Join(ls.dir, string(category))
	out := []string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ls *localBucketService) GetPublicURL(category BucketCategory, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	return fmt.Sprintf("%s/%s/%s", ls.baseURL, category, key)
}

// LocalDir reports where a local bucket service keeps files, or "" for remote backends.
func LocalDir(bs BucketService) string {
	if ls, ok := bs.(*localBucketService); ok {
		return ls.dir
	}
	return ""
}
