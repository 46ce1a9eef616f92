package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/wanderlog/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。
// パスワードハッシュは決して含めない。
type userResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// storyResponse は旅行記のAPIレスポンス。
// visitedDateはリクエストと対称にエポックミリ秒で返す。
type storyResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Title            string    `json:"title"`
	Story            string    `json:"story"`
	VisitedLocations []string  `json:"visitedLocation"`
	ImageURL         string    `json:"imageUrl"`
	VisitedDate      int64     `json:"visitedDate"`
	IsFavourite      bool      `json:"isFavourite"`
	CreatedAt        time.Time `json:"createdAt"`
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// toStoryResponse はmodel.TravelStoryからAPIレスポンスに変換する。
func toStoryResponse(story *model.TravelStory) storyResponse {
	locations := story.VisitedLocations
	if locations == nil {
		locations = []string{}
	}
	return storyResponse{
		ID:               story.ID,
		UserID:           story.UserID,
		Title:            story.Title,
		Story:            story.Story,
		VisitedLocations: locations,
		ImageURL:         story.ImageURL,
		VisitedDate:      story.VisitedDate.UnixMilli(),
		IsFavourite:      story.IsFavourite,
		CreatedAt:        story.CreatedAt,
	}
}

// toStoryResponses は旅行記のスライスをAPIレスポンスに変換する。
// nilスライスも空のJSON配列として返す。
func toStoryResponses(stories []*model.TravelStory) []storyResponse {
	responses := make([]storyResponse, 0, len(stories))
	for _, story := range stories {
		responses = append(responses, toStoryResponse(story))
	}
	return responses
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
