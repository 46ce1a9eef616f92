// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/wanderlog/internal/model"
)

// ErrDuplicateEmail はemailの一意制約違反を表す。
// 事前チェックをすり抜けた挿入競合もこのエラーに正規化される。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// emailが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByEmail は指定emailのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// StoryRepository は旅行記データの永続化インターフェース。
// 読み取り・更新・削除はすべてIDと所有者IDの両方で絞り込む。
// 一覧系の並び順は is_favourite DESC, created_at DESC, id ASC で統一する。
type StoryRepository interface {
	// Create は旅行記を作成する。
	Create(ctx context.Context, story *model.TravelStory) error

	// FindByIDAndUser は指定IDかつ指定所有者の旅行記を取得する。
	// 見つからない場合（他ユーザー所有を含む）はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.TravelStory, error)

	// ListByUser は所有者の全旅行記をお気に入り優先で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.TravelStory, error)

	// Update は旅行記の可変フィールドを上書き更新する。
	// IDと所有者IDの両方が一致する行のみを対象とする。
	Update(ctx context.Context, story *model.TravelStory) error

	// SetFavourite はお気に入りフラグを更新し、更新後の旅行記を返す。
	// 対象が見つからない場合はnilを返す。
	SetFavourite(ctx context.Context, id, userID string, isFavourite bool) (*model.TravelStory, error)

	// Delete は指定IDかつ指定所有者の旅行記を削除する。
	Delete(ctx context.Context, id, userID string) error

	// Search はタイトル・本文・訪問地のいずれかに部分一致する旅行記を返す。
	// 大文字小文字は区別しない。
	Search(ctx context.Context, userID, query string) ([]*model.TravelStory, error)

	// FilterByDateRange は訪問日が[start, end]（両端含む）の旅行記を返す。
	FilterByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*model.TravelStory, error)
}
