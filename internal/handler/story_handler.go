package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/wanderlog/internal/middleware"
	"github.com/hitoshi/wanderlog/internal/model"
	"github.com/hitoshi/wanderlog/internal/story"
)

// StoryServiceInterface は旅行記ハンドラーが必要とするサービスインターフェース。
type StoryServiceInterface interface {
	// Create は旅行記を作成する。
	Create(ctx context.Context, userID string, in story.Input) (*model.TravelStory, error)
	// List は呼び出しユーザーの全旅行記をお気に入り優先で返す。
	List(ctx context.Context, userID string) ([]*model.TravelStory, error)
	// Update は旅行記の可変フィールドをすべて上書きする。
	Update(ctx context.Context, userID, storyID string, in story.Input) (*model.TravelStory, error)
	// SetFavourite はお気に入りフラグを設定する。
	SetFavourite(ctx context.Context, userID, storyID string, isFavourite bool) (*model.TravelStory, error)
	// Delete は旅行記と関連画像を削除する。
	Delete(ctx context.Context, userID, storyID string) error
	// Search はタイトル・本文・訪問地への部分一致検索を行う。
	Search(ctx context.Context, userID, query string) ([]*model.TravelStory, error)
	// FilterByDateRange は訪問日が範囲内（両端含む）の旅行記を返す。
	FilterByDateRange(ctx context.Context, userID string, startMillis, endMillis int64) ([]*model.TravelStory, error)
}

// StoryHandler は旅行記管理のHTTPハンドラー。
type StoryHandler struct {
	service  StoryServiceInterface
	recorder UsageRecorder
}

// NewStoryHandler はStoryHandlerを生成する。
func NewStoryHandler(service StoryServiceInterface, recorder UsageRecorder) *StoryHandler {
	return &StoryHandler{
		service:  service,
		recorder: recorder,
	}
}

// storyRequest は旅行記の作成・編集リクエストのボディ。
// visitedDateはエポックミリ秒。
type storyRequest struct {
	Title            string   `json:"title"`
	Story            string   `json:"story"`
	VisitedLocations []string `json:"visitedLocation"`
	ImageURL         string   `json:"imageUrl"`
	VisitedDate      int64    `json:"visitedDate"`
}

// updateFavouriteRequest はお気に入り更新リクエストのボディ。
type updateFavouriteRequest struct {
	IsFavourite bool `json:"isFavourite"`
}

// storyMutationResponse は作成・更新成功時のレスポンス。
type storyMutationResponse struct {
	Error   bool          `json:"error"`
	Story   storyResponse `json:"story"`
	Message string        `json:"message"`
}

// storyListResponse は一覧・検索・フィルタのレスポンス。
type storyListResponse struct {
	Error   bool            `json:"error"`
	Stories []storyResponse `json:"stories"`
}

// messageResponse は削除成功時のレスポンス。
type messageResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// toInput はリクエストボディをサービス層の入力に変換する。
func (req storyRequest) toInput() story.Input {
	return story.Input{
		Title:             req.Title,
		Story:             req.Story,
		VisitedLocations:  req.VisitedLocations,
		ImageURL:          req.ImageURL,
		VisitedDateMillis: req.VisitedDate,
	}
}

// AddTravelStory は旅行記の作成を処理する。
// POST /add-travel-story
func (h *StoryHandler) AddTravelStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディの解析に失敗しました。")
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordStoryCreated()
	}

	writeJSON(w, http.StatusCreated, storyMutationResponse{
		Error:   false,
		Story:   toStoryResponse(created),
		Message: "旅行記を作成しました。",
	})
}

// GetAllStories は呼び出しユーザーの全旅行記を返す。
// GET /get-all-stories
func (h *StoryHandler) GetAllStories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	stories, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, storyListResponse{
		Error:   false,
		Stories: toStoryResponses(stories),
	})
}

// EditStory は旅行記の編集を処理する。
// PUT /edit-story/{id}
func (h *StoryHandler) EditStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	storyID := chi.URLParam(r, "id")

	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディの解析に失敗しました。")
		return
	}

	updated, err := h.service.Update(r.Context(), userID, storyID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, storyMutationResponse{
		Error:   false,
		Story:   toStoryResponse(updated),
		Message: "旅行記を更新しました。",
	})
}

// DeleteStory は旅行記の削除を処理する。
// DELETE /delete-story/{id}
func (h *StoryHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	storyID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, storyID); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordStoryDeleted()
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Error:   false,
		Message: "旅行記を削除しました。",
	})
}

// UpdateIsFavourite はお気に入りフラグの更新を処理する。
// PUT /update-is-favourite/{id}
func (h *StoryHandler) UpdateIsFavourite(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	storyID := chi.URLParam(r, "id")

	var req updateFavouriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディの解析に失敗しました。")
		return
	}

	updated, err := h.service.SetFavourite(r.Context(), userID, storyID, req.IsFavourite)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, storyMutationResponse{
		Error:   false,
		Story:   toStoryResponse(updated),
		Message: "お気に入りを更新しました。",
	})
}

// SearchStories は旅行記の部分一致検索を処理する。
// GET /search?query=
func (h *StoryHandler) SearchStories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	query := r.URL.Query().Get("query")

	stories, err := h.service.Search(r.Context(), userID, query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, storyListResponse{
		Error:   false,
		Stories: toStoryResponses(stories),
	})
}

// FilterStories は訪問日の範囲フィルタを処理する。
// GET /travel-stories/filter?startDate=&endDate=
func (h *StoryHandler) FilterStories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	startMillis, err := parseMillisParam(r, "startDate")
	if err != nil {
		handleServiceError(w, model.NewValidationError("startDateはエポックミリ秒で指定してください。"))
		return
	}
	endMillis, err := parseMillisParam(r, "endDate")
	if err != nil {
		handleServiceError(w, model.NewValidationError("endDateはエポックミリ秒で指定してください。"))
		return
	}

	stories, err := h.service.FilterByDateRange(r.Context(), userID, startMillis, endMillis)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, storyListResponse{
		Error:   false,
		Stories: toStoryResponses(stories),
	})
}

// parseMillisParam はクエリパラメータをエポックミリ秒として解析する。
func parseMillisParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
}
