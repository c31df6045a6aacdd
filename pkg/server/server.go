// Package server exposes the parser over HTTP so exports can be uploaded
// instead of read from disk.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/chatlog/pkg/config"
	"github.com/ccollicutt/chatlog/pkg/conversation"
	"github.com/ccollicutt/chatlog/pkg/output"
	"github.com/ccollicutt/chatlog/pkg/parser"
	"github.com/ccollicutt/chatlog/pkg/store"
	"github.com/ccollicutt/chatlog/pkg/webhook"
)

// DefaultUploadName is the source name used for raw (non-multipart) uploads.
const DefaultUploadName = "upload.txt"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	ReadTimeout    time.Duration

	// Self is the default self sender; the "self" query parameter overrides it.
	Self string

	// Store, when set, enables the archive endpoints. Parsed uploads are
	// saved to it when Archive is true.
	Store   *store.Store
	Archive bool

	Webhooks []config.WebhookConfig
	Log      *logrus.Logger
}

// Server serves the chatlog HTTP API.
type Server struct {
	opts     Options
	router   *mux.Router
	notifier *webhook.Client
	log      *logrus.Logger
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = config.DefaultReadTimeout
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	s := &Server{
		opts:     opts,
		router:   mux.NewRouter(),
		notifier: webhook.NewClient(opts.Log),
		log:      opts.Log,
	}

	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/parse", s.handleParse).Methods(http.MethodPost)
	api.HandleFunc("/conversations", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{id}", s.handleDelete).Methods(http.MethodDelete)

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("server shutdown")
		}
	}()

	s.log.WithField("addr", ln.Addr().String()).Info("server listening")
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	body, source, err := uploadReader(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	text, err := parser.Decode(body, s.opts.MaxUploadBytes)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	self := s.opts.Self
	if q := r.URL.Query().Get("self"); q != "" {
		self = q
	}

	meta := output.Metadata{InputBytes: len(text)}
	conv, err := conversation.New(source, parser.Parse(text), conversation.WithSelf(self))
	if err != nil {
		meta.ParsedAt, meta.Duration = start, time.Since(start)
		s.notifier.Deliver(r.Context(), s.opts.Webhooks, output.NewEmptyReport(source, meta))
		s.fail(w, r, err)
		return
	}

	if s.opts.Archive && s.opts.Store != nil {
		if err := s.opts.Store.Save(r.Context(), conv); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	meta.ParsedAt, meta.Duration = start, time.Since(start)
	report := output.NewReport(conv, meta)
	s.notifier.Deliver(r.Context(), s.opts.Webhooks, report)

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "archive is not configured")
		return
	}

	list, err := s.opts.Store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": list})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "archive is not configured")
		return
	}

	conv, err := s.opts.Store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output.NewReport(conv, output.Metadata{}))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "archive is not configured")
		return
	}

	if err := s.opts.Store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadReader returns the export body and its source name. Multipart
// requests must carry the export in a part named "file"; anything else is
// treated as the raw export text.
func uploadReader(r *http.Request) (io.Reader, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = DefaultUploadName
		}
		return r.Body, name, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", badRequest(err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", badRequest(errors.New(`multipart upload has no "file" part`))
		}
		if err != nil {
			return nil, "", badRequest(err)
		}
		if part.FormName() != "file" {
			continue
		}
		name := part.FileName()
		if name == "" {
			name = DefaultUploadName
		}
		return part, name, nil
	}
}

type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	var reqErr *requestError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, parser.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrNotText):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, conversation.ErrNoMessages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	entry := s.log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}).WithError(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		entry.Error("request failed")
		msg = "internal error"
	} else {
		entry.Debug("request rejected")
	}
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
