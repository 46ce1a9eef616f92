// Package storage は画像ファイルの保存先を抽象化する。
// ローカルディスク（既定）とS3互換オブジェクトストレージの2実装を提供する。
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"
)

// ImageStore は画像ファイルの永続化インターフェース。
type ImageStore interface {
	// Save は画像を保存し、クライアントに返す公開URLを返す。
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)

	// Delete は公開URLに対応する画像を削除する。
	// すでに存在しない場合はエラーとせず成功扱いにする（冪等）。
	Delete(ctx context.Context, imageURL string) error
}

// NewFilename はアップロード画像の保存名を生成する。
// エポックミリ秒に元ファイルの拡張子を付けた形式。
func NewFilename(originalName string) string {
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), path.Ext(originalName))
}

// filenameFromURL は公開URLの最終パス要素を取り出す。
// パストラバーサルを防ぐため、ディレクトリ区切りを含まない名前のみを返す。
func filenameFromURL(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL: %w", err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("image URL has no filename: %s", imageURL)
	}

	return name, nil
}
