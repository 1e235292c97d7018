// Package stub is a local stand-in for the conversation analysis service.
// It accepts the same multipart upload and answers with a fixture result.
package stub

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yildizm/qupid/internal/logger"
	"github.com/yildizm/qupid/internal/qupid"
)

// MessageMissingScreenshots is the 400 body when a request carries no screenshots
const MessageMissingScreenshots = "missing screenshots. send multipart/form-data with 'files' (up to 10 images)."

// maxUploadMemory bounds the parts held in memory before spilling to disk
const maxUploadMemory = 32 << 20

// Options configure the stand-in service
type Options struct {
	// Fixture is the result served on success; DefaultFixture when nil
	Fixture *qupid.ServerResult
	// Latency delays every analyze response
	Latency time.Duration
	// FailWith, when set, makes every analyze request fail with a 500 and this message
	FailWith       string
	AllowedOrigins []string
	// FieldName is the multipart field holding screenshots
	FieldName   string
	AnalyzePath string
	Logger      *logger.Logger
}

type server struct {
	opts Options
	log  *logger.Logger
}

// response is the fixture plus the per-request screenshot count
type response struct {
	*qupid.ServerResult
	ScreenshotsAnalyzed int `json:"screenshots_analyzed"`
}

// NewRouter builds the chi router serving the analyze and health endpoints
func NewRouter(opts Options) http.Handler {
	if opts.Fixture == nil {
		opts.Fixture = DefaultFixture()
	}
	if opts.FieldName == "" {
		opts.FieldName = qupid.DefaultFieldName
	}
	if opts.AnalyzePath == "" {
		opts.AnalyzePath = qupid.DefaultAnalyzePath
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	s := &server{opts: opts, log: log.WithComponent("stub")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Post(opts.AnalyzePath, s.handleAnalyze)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, qupid.ErrorBody{Error: MessageMissingScreenshots})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	parts := screenshotParts(r.MultipartForm, s.opts.FieldName)
	if len(parts) == 0 {
		writeJSON(w, http.StatusBadRequest, qupid.ErrorBody{Error: MessageMissingScreenshots})
		return
	}

	s.log.DebugWithFields("analyze request", []logger.Field{
		logger.RequestID(r.Header.Get("X-Request-ID")),
		logger.Count(len(parts)),
	})

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
	}

	if s.opts.FailWith != "" {
		writeJSON(w, http.StatusInternalServerError, qupid.ErrorBody{Error: s.opts.FailWith})
		return
	}

	result := *s.opts.Fixture
	if result.MessagesAnalyzed == nil {
		result.MessagesAnalyzed = qupid.Float(float64(len(parts)))
	}
	writeJSON(w, http.StatusOK, response{ServerResult: &result, ScreenshotsAnalyzed: len(parts)})
}

// screenshotParts returns the parts under field, falling back to a single "file" part
func screenshotParts(form *multipart.Form, field string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	if parts := form.File[field]; len(parts) > 0 {
		return parts
	}
	if single := form.File["file"]; len(single) > 0 {
		return single[:1]
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.InfoWithFields(fmt.Sprintf("%s %s", r.Method, r.URL.Path), []logger.Field{
			logger.F("status", rec.status),
			logger.Duration(time.Since(start)),
			logger.F("remote_addr", r.RemoteAddr),
			logger.RequestID(middleware.GetReqID(r.Context())),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already out; an encode failure cannot be reported to the client
	_ = json.NewEncoder(w).Encode(v)
}
