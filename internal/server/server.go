package server

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"flashq/internal/flash"
	"flashq/internal/model"
	"flashq/internal/session"
	"flashq/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates
var templateFS embed.FS

// Options configure how pages render flash messages.
type Options struct {
	Port            string
	Mode            model.Mode
	ShowCloseButton bool
	CookieName      string
	SessionTTL      time.Duration
}

type Server struct {
	store    store.Store
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
	sessions *session.Manager
	opts     Options
	tmpl     *template.Template
}

func NewServer(st store.Store, opts Options, logger *zap.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(flashFuncs(nil)).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:    st,
		logger:   logger,
		router:   mux.NewRouter(),
		sessions: session.NewManager(st, opts.CookieName, opts.SessionTTL, logger),
		opts:     opts,
		tmpl:     tmpl,
	}
	s.server = &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.sessions.Middleware, s.flashMiddleware)

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/notify", s.handleNotify).Methods("POST")
	s.router.HandleFunc("/clear", s.handleClear).Methods("POST")
	s.router.HandleFunc("/flash", s.handleFragment).Methods("GET")
	s.router.HandleFunc("/flash/status", s.handleStatus).Methods("GET")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start launches the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Web server listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down. Safe to call before or without Start.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type flashKey struct{}

func flashFrom(r *http.Request) *flash.Flash {
	f, _ := r.Context().Value(flashKey{}).(*flash.Flash)
	return f
}

// flashMiddleware builds the request's Flash from its session.
func (s *Server) flashMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := session.FromContext(r.Context())
		if !ok {
			s.logger.Error("Flash middleware mounted without sessions")
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		f, err := flash.New(h, flash.Options{
			Mode:            s.opts.Mode,
			ShowCloseButton: s.opts.ShowCloseButton,
			Logger:          s.logger,
		})
		if err != nil {
			s.logger.Error("Failed to build flash", zap.Error(err))
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), flashKey{}, f)))
	})
}

// parseFilter maps a category token from a page to a filter. Unknown tokens
// mean every category.
func parseFilter(token string) model.Category {
	c, err := model.ParseCategory(token)
	if err != nil {
		return model.Any
	}
	return c
}

func flashFuncs(f *flash.Flash) template.FuncMap {
	return template.FuncMap{
		"flash": func(token string) template.HTML {
			if f == nil {
				return ""
			}
			return f.HTML(parseFilter(token))
		},
		"hasFlash": func(token string) bool {
			return f != nil && f.HasFlash(parseFilter(token))
		},
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	f := flashFrom(r)

	tmpl, err := s.tmpl.Clone()
	if err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	tmpl.Funcs(flashFuncs(f))

	data := map[string]interface{}{
		"Title":  "Flash messages",
		"Toastr": f.Mode() == model.ModeToastr,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("Template error", zap.Error(err))
	}
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	f := flashFrom(r)

	content := r.FormValue("message")
	if content == "" {
		f.Warning("Nothing to flash: the message was empty.")
		f.SaveSession()
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	category, err := model.ParseCategory(r.FormValue("category"))
	if err != nil {
		f.Error("Unknown category " + r.FormValue("category"))
		f.SaveSession()
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	m := f.Add(content, category, r.FormValue("css"))
	f.SaveSession()
	s.logger.Debug("Flash queued", zap.Int64("message_id", m.ID), zap.Stringer("category", m.Category))

	// Redirect back home
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	flashFrom(r).Clear()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleFragment renders and consumes the pending messages of one category,
// for pages that poll or swap in notifications.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	out := flashFrom(r).Render(parseFilter(r.URL.Query().Get("type")))
	if out == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
}

type status struct {
	Pending    int            `json:"pending"`
	Categories map[string]int `json:"categories"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	f := flashFrom(r)

	st := status{
		Pending:    f.Count(model.Any),
		Categories: make(map[string]int),
	}
	for _, c := range model.Categories {
		if f.HasFlash(c) {
			st.Categories[c.String()] = f.Count(c)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.logger.Error("Failed to encode status", zap.Error(err))
	}
}
