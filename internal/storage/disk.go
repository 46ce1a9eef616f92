package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore はローカルディスク上のアップロードディレクトリに画像を保存する。
// 公開URLは <baseURL>/uploads/<filename> の形式。
type DiskStore struct {
	uploadDir string
	baseURL   string
}

// NewDiskStore はDiskStoreを生成する。
func NewDiskStore(uploadDir, baseURL string) *DiskStore {
	return &DiskStore{
		uploadDir: uploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Save は画像をアップロードディレクトリに書き込み、公開URLを返す。
// ディレクトリが存在しない場合は作成する。
func (s *DiskStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst := filepath.Join(s.uploadDir, filepath.Base(filename))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return s.baseURL + "/uploads/" + filepath.Base(filename), nil
}

// Delete は公開URLに対応するファイルをアップロードディレクトリから削除する。
// URLのファイル名部分のみを使用するため、ディレクトリ外のパスは指定できない。
// ファイルが存在しない場合は成功扱い。
func (s *DiskStore) Delete(ctx context.Context, imageURL string) error {
	name, err := filenameFromURL(imageURL)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.uploadDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}

	return nil
}

// compile-time interface check
var _ ImageStore = (*DiskStore)(nil)
