package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/wanderlog/internal/middleware"
	"github.com/hitoshi/wanderlog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを作成し、アクセストークンを発行する。
	Register(ctx context.Context, fullName, email, password string) (*model.User, string, error)
	// Login は認証情報を検証し、アクセストークンを発行する。
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	// GetUser は認証済みユーザーのプロフィールを取得する。
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// UsageRecorder はドメインイベントのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。nilの場合は記録をスキップする。
type UsageRecorder interface {
	RecordUserRegistered()
	RecordStoryCreated()
	RecordStoryDeleted()
	RecordImageUploaded(sizeBytes int64)
}

// AuthHandler はユーザー登録・ログイン・プロフィール取得のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	recorder UsageRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, recorder UsageRecorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
	}
}

// createAccountRequest はユーザー登録リクエストのボディ。
type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse は登録・ログイン成功時のレスポンス。
type authResponse struct {
	Error       bool         `json:"error"`
	User        userResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	Message     string       `json:"message"`
}

// getUserResponse はプロフィール取得のレスポンス。
type getUserResponse struct {
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

// CreateAccount はユーザー登録を処理する。
// POST /create-account
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディの解析に失敗しました。")
		return
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		handleServiceError(w, model.NewValidationError("氏名・メールアドレス・パスワードはすべて必須です。"))
		return
	}

	user, token, err := h.service.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordUserRegistered()
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Error:       false,
		User:        toUserResponse(user),
		AccessToken: token,
		Message:     "登録が完了しました。",
	})
}

// Login はログインを処理する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディの解析に失敗しました。")
		return
	}

	if req.Email == "" || req.Password == "" {
		handleServiceError(w, model.NewValidationError("メールアドレスとパスワードは必須です。"))
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Error:       false,
		User:        toUserResponse(user),
		AccessToken: token,
		Message:     "ログインしました。",
	})
}

// GetUser は認証済みユーザーのプロフィールを返す。
// GET /get-user
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, getUserResponse{
		User:    toUserResponse(user),
		Message: "",
	})
}
