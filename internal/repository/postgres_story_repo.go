package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/wanderlog/internal/model"
)

// storyColumns はtravel_storiesテーブルのSELECT対象カラム。
const storyColumns = `id, user_id, title, story, visited_locations, image_url, visited_date, is_favourite, created_at`

// storyOrderBy は一覧系クエリの統一並び順。
// お気に入り優先、同順位内は作成日時の新しい順。idは決定性のための最終タイブレーク。
const storyOrderBy = ` ORDER BY is_favourite DESC, created_at DESC, id ASC`

// PostgresStoryRepo はPostgreSQLを使用した旅行記リポジトリ。
type PostgresStoryRepo struct {
	db *sql.DB
}

// NewPostgresStoryRepo はPostgresStoryRepoを生成する。
func NewPostgresStoryRepo(db *sql.DB) *PostgresStoryRepo {
	return &PostgresStoryRepo{db: db}
}

// Create は旅行記を作成する。
func (r *PostgresStoryRepo) Create(ctx context.Context, story *model.TravelStory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO travel_stories (id, user_id, title, story, visited_locations, image_url, visited_date, is_favourite, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		story.ID, story.UserID, story.Title, story.Story, pq.Array(story.VisitedLocations),
		story.ImageURL, story.VisitedDate, story.IsFavourite, story.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert travel story: %w", err)
	}

	return nil
}

// FindByIDAndUser は指定IDかつ指定所有者の旅行記を取得する。
// 見つからない場合（他ユーザー所有を含む）はnilを返す。
func (r *PostgresStoryRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.TravelStory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	story, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find travel story: %w", err)
	}

	return story, nil
}

// ListByUser は所有者の全旅行記をお気に入り優先で返す。
func (r *PostgresStoryRepo) ListByUser(ctx context.Context, userID string) ([]*model.TravelStory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories WHERE user_id = $1`+storyOrderBy,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list travel stories: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// Update は旅行記の可変フィールドを上書き更新する。
// 所有者IDが一致しない場合は何も更新しない。
func (r *PostgresStoryRepo) Update(ctx context.Context, story *model.TravelStory) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE travel_stories
		 SET title = $3, story = $4, visited_locations = $5, image_url = $6, visited_date = $7
		 WHERE id = $1 AND user_id = $2`,
		story.ID, story.UserID, story.Title, story.Story, pq.Array(story.VisitedLocations),
		story.ImageURL, story.VisitedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update travel story: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("travel story not found: %s", story.ID)
	}

	return nil
}

// SetFavourite はお気に入りフラグを更新し、更新後の旅行記を返す。
// 対象が見つからない場合はnilを返す。
func (r *PostgresStoryRepo) SetFavourite(ctx context.Context, id, userID string, isFavourite bool) (*model.TravelStory, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE travel_stories SET is_favourite = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+storyColumns,
		id, userID, isFavourite,
	)

	story, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update favourite flag: %w", err)
	}

	return story, nil
}

// Delete は指定IDかつ指定所有者の旅行記を削除する。
func (r *PostgresStoryRepo) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM travel_stories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete travel story: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("travel story not found: %s", id)
	}

	return nil
}

// Search はタイトル・本文・訪問地のいずれかに部分一致する旅行記を返す。
// ILIKEによる大文字小文字を区別しない部分一致。ワイルドカード文字はエスケープする。
func (r *PostgresStoryRepo) Search(ctx context.Context, userID, query string) ([]*model.TravelStory, error) {
	pattern := "%" + escapeLikePattern(query) + "%"

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories
		 WHERE user_id = $1
		   AND (title ILIKE $2
		     OR story ILIKE $2
		     OR EXISTS (SELECT 1 FROM unnest(visited_locations) AS loc WHERE loc ILIKE $2))`+storyOrderBy,
		userID, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search travel stories: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// FilterByDateRange は訪問日が[start, end]（両端含む）の旅行記を返す。
func (r *PostgresStoryRepo) FilterByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*model.TravelStory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories
		 WHERE user_id = $1 AND visited_date >= $2 AND visited_date <= $3`+storyOrderBy,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter travel stories by date: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStory は1行を読み取りTravelStoryに変換する。
func scanStory(row rowScanner) (*model.TravelStory, error) {
	story := &model.TravelStory{}
	var locations pq.StringArray

	err := row.Scan(
		&story.ID, &story.UserID, &story.Title, &story.Story, &locations,
		&story.ImageURL, &story.VisitedDate, &story.IsFavourite, &story.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	story.VisitedLocations = []string(locations)
	return story, nil
}

// collectStories は結果セットをすべて読み取る。
func collectStories(rows *sql.Rows) ([]*model.TravelStory, error) {
	stories := []*model.TravelStory{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan travel story: %w", err)
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate travel stories: %w", err)
	}

	return stories, nil
}

// escapeLikePattern はLIKE/ILIKEのメタ文字をエスケープする。
// 検索語はリテラルの部分文字列として扱う。
func escapeLikePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// compile-time interface check
var _ StoryRepository = (*PostgresStoryRepo)(nil)
