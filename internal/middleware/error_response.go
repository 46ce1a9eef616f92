package middleware

import (
	"encoding/json"
	"net/http"
)

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 既存クライアントとの互換のため {error: bool, message: string} 形式を維持する。
type errorResponseBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponseBody{
		Error:   true,
		Message: message,
	})
}

// WriteUnauthorized は認証エラーの統一レスポンスを書き込む。
// トークン欠落・改ざん・期限切れの区別はクライアントに開示しない。
func WriteUnauthorized(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusUnauthorized, "認証が必要です。")
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, "内部エラーが発生しました。")
}
