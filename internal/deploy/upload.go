package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/arencloud/sitedeploy/internal/s3"
)

// DefaultContentType is used when the extension has no known MIME type.
const DefaultContentType = "binary/octet-stream"

// ErrMissingBuildOutput is returned by UploadTree when the output directory does not exist.
var ErrMissingBuildOutput = errors.New("build output directory does not exist")

// UploadItem describes one file of the output tree.
type UploadItem struct {
	Path        string `json:"path"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ContentType infers the MIME type of name from its extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return DefaultContentType
}

// ObjectKey maps path under root to a slash-separated object key.
func ObjectKey(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// UploadTree uploads every regular file under root to bucket, one file at a time.
// The first failure aborts the walk; items already uploaded are returned with the error.
func (d *Deployer) UploadTree(ctx context.Context, bucket, root string) ([]UploadItem, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (build the project first)", ErrMissingBuildOutput, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("build output %s is not a directory", root)
	}

	var items []UploadItem
	err = filepath.WalkDir(root, func(path string, de fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if de.IsDir() {
			return nil
		}
		if !de.Type().IsRegular() {
			// symlinks count when they resolve to a regular file
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				return nil
			}
		}
		key, err := ObjectKey(root, path)
		if err != nil {
			return err
		}
		item, err := d.uploadFile(ctx, bucket, path, key)
		if err != nil {
			d.logger.Error("upload failed", "path", path, "key", key, "error", s3.APIMessage(err))
			return fmt.Errorf("upload %s: %w", path, err)
		}
		items = append(items, item)
		d.logger.Info("uploaded", "path", path, "key", key, "contentType", item.ContentType, "size", item.Size)
		return nil
	})
	return items, err
}

func (d *Deployer) uploadFile(ctx context.Context, bucket, path, key string) (UploadItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadItem{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return UploadItem{}, err
	}
	item := UploadItem{Path: path, Key: key, ContentType: ContentType(path), Size: st.Size()}
	if err := d.store.Upload(ctx, bucket, key, f, item.Size, item.ContentType); err != nil {
		return UploadItem{}, err
	}
	return item, nil
}
