// Package story は旅行記の所有者スコープ付きビジネスロジックを提供する。
package story

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/wanderlog/internal/model"
	"github.com/hitoshi/wanderlog/internal/repository"
	"github.com/hitoshi/wanderlog/internal/security"
	"github.com/hitoshi/wanderlog/internal/storage"
)

// Input は旅行記の作成・編集で受け取るフィールドの集合。
// VisitedDateMillisはエポックミリ秒。
type Input struct {
	Title             string
	Story             string
	VisitedLocations  []string
	ImageURL          string
	VisitedDateMillis int64
}

// Service は旅行記のビジネスロジックを提供する。
// すべての操作は認証済みユーザーIDでスコープされ、
// 他ユーザーの旅行記は存在しないものとして扱う。
type Service struct {
	storyRepo      repository.StoryRepository
	images         storage.ImageStore
	sanitizer      security.ContentSanitizerService
	placeholderURL string
}

// NewService はServiceを生成する。
// placeholderURLは画像未指定時に設定される既定画像のURL。
func NewService(
	storyRepo repository.StoryRepository,
	images storage.ImageStore,
	sanitizer security.ContentSanitizerService,
	placeholderURL string,
) *Service {
	return &Service{
		storyRepo:      storyRepo,
		images:         images,
		sanitizer:      sanitizer,
		placeholderURL: placeholderURL,
	}
}

// Create は旅行記を作成する。
// タイトル・本文・訪問地・訪問日は必須。画像URLが空の場合はプレースホルダを設定する。
func (s *Service) Create(ctx context.Context, userID string, in Input) (*model.TravelStory, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	story := &model.TravelStory{
		ID:               uuid.New().String(),
		UserID:           userID,
		Title:            in.Title,
		Story:            s.sanitizer.Sanitize(in.Story),
		VisitedLocations: in.VisitedLocations,
		ImageURL:         s.imageURLOrPlaceholder(in.ImageURL),
		VisitedDate:      millisToTime(in.VisitedDateMillis),
		IsFavourite:      false,
		CreatedAt:        time.Now(),
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create travel story: %w", err)
	}

	return story, nil
}

// List は呼び出しユーザーの全旅行記をお気に入り優先で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.TravelStory, error) {
	stories, err := s.storyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list travel stories: %w", err)
	}

	return stories, nil
}

// Update は旅行記の可変フィールドをすべて上書きする。
// 呼び出しユーザーが所有していない場合はStoryNotFoundを返す。
func (s *Service) Update(ctx context.Context, userID, storyID string, in Input) (*model.TravelStory, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	story, err := s.storyRepo.FindByIDAndUser(ctx, storyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find travel story: %w", err)
	}
	if story == nil {
		return nil, model.NewStoryNotFoundError(storyID)
	}

	story.Title = in.Title
	story.Story = s.sanitizer.Sanitize(in.Story)
	story.VisitedLocations = in.VisitedLocations
	story.ImageURL = s.imageURLOrPlaceholder(in.ImageURL)
	story.VisitedDate = millisToTime(in.VisitedDateMillis)

	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to update travel story: %w", err)
	}

	return story, nil
}

// SetFavourite はお気に入りフラグを設定する。
func (s *Service) SetFavourite(ctx context.Context, userID, storyID string, isFavourite bool) (*model.TravelStory, error) {
	story, err := s.storyRepo.SetFavourite(ctx, storyID, userID, isFavourite)
	if err != nil {
		return nil, fmt.Errorf("failed to update favourite flag: %w", err)
	}
	if story == nil {
		return nil, model.NewStoryNotFoundError(storyID)
	}

	return story, nil
}

// Delete は旅行記を削除し、関連画像をベストエフォートで削除する。
// 画像削除の失敗はログに記録するのみで、レコード削除の成功は覆さない。
// プレースホルダ画像は共有リソースのため削除対象にしない。
func (s *Service) Delete(ctx context.Context, userID, storyID string) error {
	story, err := s.storyRepo.FindByIDAndUser(ctx, storyID, userID)
	if err != nil {
		return fmt.Errorf("failed to find travel story: %w", err)
	}
	if story == nil {
		return model.NewStoryNotFoundError(storyID)
	}

	if err := s.storyRepo.Delete(ctx, storyID, userID); err != nil {
		return fmt.Errorf("failed to delete travel story: %w", err)
	}

	if story.ImageURL != "" && story.ImageURL != s.placeholderURL {
		if err := s.images.Delete(ctx, story.ImageURL); err != nil {
			slog.Error("failed to delete story image",
				slog.String("story_id", storyID),
				slog.String("image_url", story.ImageURL),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// Search はタイトル・本文・訪問地への部分一致検索を行う。
// 検索語が空の場合はValidationErrorを返す。
func (s *Service) Search(ctx context.Context, userID, query string) ([]*model.TravelStory, error) {
	if query == "" {
		return nil, model.NewValidationError("検索キーワードを入力してください。")
	}

	stories, err := s.storyRepo.Search(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search travel stories: %w", err)
	}

	return stories, nil
}

// FilterByDateRange は訪問日が[start, end]（両端含む、エポックミリ秒）の旅行記を返す。
func (s *Service) FilterByDateRange(ctx context.Context, userID string, startMillis, endMillis int64) ([]*model.TravelStory, error) {
	stories, err := s.storyRepo.FilterByDateRange(ctx, userID, millisToTime(startMillis), millisToTime(endMillis))
	if err != nil {
		return nil, fmt.Errorf("failed to filter travel stories: %w", err)
	}

	return stories, nil
}

// imageURLOrPlaceholder は画像URLが空の場合にプレースホルダを返す。
func (s *Service) imageURLOrPlaceholder(imageURL string) string {
	if imageURL == "" {
		return s.placeholderURL
	}
	return imageURL
}

// validateInput は作成・編集共通の必須フィールド検証を行う。
func validateInput(in Input) error {
	if in.Title == "" || in.Story == "" || len(in.VisitedLocations) == 0 || in.VisitedDateMillis == 0 {
		return model.NewValidationError("すべての必須項目を入力してください。")
	}
	return nil
}

// millisToTime はエポックミリ秒をtime.Timeに変換する。
func millisToTime(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}
