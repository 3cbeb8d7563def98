package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/wunjo/internal/auth"
	"github.com/starford/wunjo/internal/dataview"
	"github.com/starford/wunjo/internal/fileservice"
	"github.com/starford/wunjo/internal/kanban"
	"github.com/starford/wunjo/internal/pdf"
	"github.com/starford/wunjo/internal/render"
	"github.com/starford/wunjo/internal/search"
)

// Deps bundles everything the router serves.
type Deps struct {
	Files    *fileservice.Service
	Kanban   *kanban.Store
	Dataview *dataview.Engine
	Search   *search.Searcher
	Renderer *render.Renderer
	Exporter *pdf.Exporter

	// Auth is nil when authentication is disabled; Verifier must be nil in
	// that case too.
	Auth     *auth.Store
	Issuer   *auth.TokenIssuer
	Verifier TokenVerifier

	// SSE, if non-nil, is mounted at GET /events inside the auth group.
	SSE http.Handler
}

// NewRouter creates a chi router with all API routes mounted. Login, register
// and markdown preview stay outside the auth group; everything else passes
// the token middleware.
func NewRouter(d Deps) chi.Router {
	fh := NewFileHandler(d.Files)
	kh := NewKanbanHandler(d.Kanban)
	dh := NewDataviewHandler(d.Dataview)
	sh := NewSearchHandler(d.Search)
	mh := NewMarkdownHandler(d.Renderer)
	ph := NewPDFHandler(d.Exporter)

	ah := NewAuthHandler(d.Auth, d.Issuer)

	r := chi.NewRouter()

	// Unauthenticated surface.
	if d.Auth != nil {
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/logout", ah.Logout)
	}
	r.Post("/markdown/preview", mh.Preview)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(d.Verifier))

		if d.Auth != nil {
			r.Get("/auth/me", ah.Me)
		}

		r.Get("/files/list", fh.List)
		r.Get("/files/tree", fh.Tree)
		r.Get("/files/content", fh.Content)
		r.Get("/files/download", fh.Download)
		r.Post("/files/create", fh.Create)
		r.Post("/files/update", fh.Update)
		r.Post("/files/delete", fh.Delete)
		r.Post("/files/create-folder", fh.CreateFolder)
		r.Post("/files/move", fh.Move)
		r.Post("/files/upload", fh.Upload)

		r.Post("/markdown/render", mh.Render)

		r.Get("/kanban/board/*", kh.Board)
		r.Put("/kanban/board/*", kh.SaveBoard)
		r.Post("/kanban/item/*", kh.AddItem)
		r.Put("/kanban/item/*", kh.UpdateItem)
		r.Delete("/kanban/item/*", kh.DeleteItem)
		r.Put("/kanban/move/*", kh.MoveItem)

		r.Post("/dataview/query", dh.Query)

		r.Post("/search/files", sh.Files)
		r.Post("/search/content", sh.Content)
		r.Post("/search/quick", sh.Quick)

		r.Get("/pdf/export/*", ph.Export)

		if d.SSE != nil {
			r.Get("/events", d.SSE.ServeHTTP)
		}
	})

	return r
}
