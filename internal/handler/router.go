package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/wanderlog/internal/metrics"
	"github.com/hitoshi/wanderlog/internal/middleware"
	"github.com/hitoshi/wanderlog/internal/storage"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	Logger            *slog.Logger
	RequestRecorder   middleware.RequestRecorder

	// サービス
	AuthService  AuthServiceInterface
	StoryService StoryServiceInterface

	// 画像
	ImageStore    storage.ImageStore
	MaxUploadSize int64

	// 静的ファイル（ディスクバックエンドの場合のみ設定）
	UploadDir string
	AssetsDir string

	// 運用エンドポイント
	DB            *sql.DB
	MetricsGather prometheus.Gatherer
	UsageRecorder UsageRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS
//
// 画像エンドポイントを含むすべての変更系ルートはBearerトークン認証を要求する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.RequestRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.UsageRecorder)
	storyHandler := NewStoryHandler(deps.StoryService, deps.UsageRecorder)
	imageHandler := NewImageHandler(deps.ImageStore, deps.MaxUploadSize, deps.UsageRecorder)

	// --- 認証不要のルート ---

	r.Post("/create-account", authHandler.CreateAccount)
	r.Post("/login", authHandler.Login)

	r.Get("/health", newHealthHandler(deps.DB))
	if deps.MetricsGather != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGather))
	}

	// 静的ファイル配信（ディスクバックエンドの場合）
	if deps.UploadDir != "" {
		serveStatic(r, "/uploads", deps.UploadDir)
	}
	if deps.AssetsDir != "" {
		serveStatic(r, "/assets", deps.AssetsDir)
	}

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))

		r.Get("/get-user", authHandler.GetUser)

		r.Post("/add-travel-story", storyHandler.AddTravelStory)
		r.Get("/get-all-stories", storyHandler.GetAllStories)
		r.Put("/edit-story/{id}", storyHandler.EditStory)
		r.Delete("/delete-story/{id}", storyHandler.DeleteStory)
		r.Put("/update-is-favourite/{id}", storyHandler.UpdateIsFavourite)
		r.Get("/search", storyHandler.SearchStories)
		r.Get("/travel-stories/filter", storyHandler.FilterStories)

		r.Post("/image-upload", imageHandler.UploadImage)
		r.Delete("/delete-image", imageHandler.DeleteImage)
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, "データベースに接続できません。")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// serveStatic は指定ディレクトリを公開パス以下で配信する。
func serveStatic(r chi.Router, publicPath, dir string) {
	fileServer := http.StripPrefix(publicPath+"/", http.FileServer(http.Dir(dir)))
	r.Get(publicPath+"/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})
}
