package handler

import (
	"net/http"
	"strings"

	"github.com/hitoshi/wanderlog/internal/middleware"
	"github.com/hitoshi/wanderlog/internal/storage"
)

// imageFormField はmultipartフォームの画像フィールド名。
const imageFormField = "image"

// ImageHandler は画像のアップロードと削除のHTTPハンドラー。
type ImageHandler struct {
	store         storage.ImageStore
	maxUploadSize int64
	recorder      UsageRecorder
}

// NewImageHandler はImageHandlerを生成する。
func NewImageHandler(store storage.ImageStore, maxUploadSize int64, recorder UsageRecorder) *ImageHandler {
	return &ImageHandler{
		store:         store,
		maxUploadSize: maxUploadSize,
		recorder:      recorder,
	}
}

// imageUploadResponse は画像アップロード成功時のレスポンス。
type imageUploadResponse struct {
	Error    bool   `json:"error"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// UploadImage は画像のアップロードを処理する。
// multipartフォームのimageフィールドのみ受け付け、MIMEタイプがimage/*以外は拒否する。
// 保存名はエポックミリ秒+元の拡張子で衝突を避ける。
// POST /image-upload
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "画像ファイルをimageフィールドで送信してください。")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "画像ファイルのみアップロードできます。")
		return
	}

	filename := storage.NewFilename(header.Filename)

	imageURL, err := h.store.Save(r.Context(), filename, contentType, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordImageUploaded(header.Size)
	}

	writeJSON(w, http.StatusCreated, imageUploadResponse{
		Error:    false,
		ImageURL: imageURL,
		Message:  "画像をアップロードしました。",
	})
}

// DeleteImage は画像の削除を処理する。
// 対象ファイルがすでに存在しない場合も成功として扱う（冪等）。
// DELETE /delete-image?imageUrl=
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageURL := r.URL.Query().Get("imageUrl")
	if imageURL == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "imageUrlパラメータは必須です。")
		return
	}

	if err := h.store.Delete(r.Context(), imageURL); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Error:   false,
		Message: "画像を削除しました。",
	})
}
