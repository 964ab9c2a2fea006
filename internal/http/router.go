package http

import (
	"net/http"

	"crosspost/internal/auth"
	"crosspost/internal/config"
	"crosspost/internal/http/handler"
	mw "crosspost/internal/http/middleware"
	"crosspost/internal/post"
	"crosspost/internal/publish"
	"crosspost/internal/social"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, pub *publish.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{DB: db}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	postH := &handler.PostHandler{
		Svc:  &post.Service{DB: db},
		Repo: &post.Repo{DB: db},
		Pub:  pub,
	}
	r.Route("/posts", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", postH.Create)
		r.Get("/", postH.List)

		r.Get("/{id}", postH.Get)
		r.Put("/{id}", postH.Update)
		r.Delete("/{id}", postH.Delete)

		r.Post("/{id}/schedule", postH.Schedule)
		r.Post("/{id}/publish", postH.PublishNow)
	})

	acctH := &handler.AccountHandler{Svc: &social.Service{DB: db}}
	r.Route("/accounts", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", acctH.List)
		r.Delete("/{id}", acctH.Disconnect)
	})

	return r
}
