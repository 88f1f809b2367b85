package http

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"gainerscli/internal/dataprocessing"
	apperrors "gainerscli/internal/errors"
	"gainerscli/internal/exporter"
	"gainerscli/internal/gainers"
	"gainerscli/internal/infrastructure"
	"gainerscli/internal/middleware"
)

// Media types accepted by the normalize endpoint.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type sourceCtxKey struct{}

// SourceInfo describes one supported source.
type SourceInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

// NormalizeResponse is the JSON body of a normalize call.
type NormalizeResponse struct {
	Source  string                     `json:"source"`
	Stats   gainers.Stats              `json:"stats"`
	Records []gainers.NormalizedRecord `json:"records"`
}

// GainersHandler serves normalization of uploaded raw exports.
type GainersHandler struct {
	factory gainers.FactoryConfig
	maxBody int64
	logger  *slog.Logger
}

// NewGainersHandler creates a handler. maxBody caps the upload size in bytes.
func NewGainersHandler(factory gainers.FactoryConfig, maxBody int64, logger *slog.Logger) *GainersHandler {
	return &GainersHandler{
		factory: factory,
		maxBody: maxBody,
		logger:  logger.With(slog.String("component", "gainers_handler")),
	}
}

// Routes returns the gainers routes
func (h *GainersHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListSources)
	r.Route("/{source}", func(r chi.Router) {
		r.Use(h.SourceCtx)
		r.With(middleware.ContentTypeValidator(ContentTypeCSV, ContentTypeXLSX)).
			Post("/normalize", h.Normalize)
	})

	return r
}

// SourceCtx resolves the {source} URL parameter.
func (h *GainersHandler) SourceCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "source")
		source, err := gainers.ParseSource(name)
		if err != nil {
			apperrors.HandleError(w, r, h.logger,
				apperrors.NewNotFoundError(fmt.Sprintf("gainer source %q", name)).WithContext("source", name))
			return
		}

		ctx := context.WithValue(r.Context(), sourceCtxKey{}, source)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ListSources handles GET /api/v1/gainers
func (h *GainersHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources := make([]SourceInfo, 0, len(gainers.Sources()))
	for _, s := range gainers.Sources() {
		sources = append(sources, SourceInfo{Name: s.Label(), DisplayName: s.DisplayName(), URL: s.URL()})
	}
	render.JSON(w, r, sources)
}

// Normalize handles POST /api/v1/gainers/{source}/normalize. The body is a raw
// CSV or XLSX export; the response is normalized CSV, or JSON when the client
// asks for application/json.
func (h *GainersHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	source := ctx.Value(sourceCtxKey{}).(gainers.Source)

	format := dataprocessing.FormatCSV
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == ContentTypeXLSX {
		format = dataprocessing.FormatXLSX
	}

	cfg := h.factory
	cfg.Logger = infrastructure.LoggerFromContext(ctx)
	processor := gainers.NewFactoryFor(source, cfg).Processor()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	records, stats, err := processor.NormalizeReader(ctx, r.Body, format)
	if err != nil {
		apperrors.HandleError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "Normalized uploaded export",
		slog.String("source", source.Label()),
		slog.String("format", string(format)),
		slog.Int("rows_read", stats.Read),
		slog.Int("accepted", stats.Accepted))

	if wantsJSON(r) {
		render.JSON(w, r, NormalizeResponse{Source: source.Label(), Stats: stats, Records: records})
		return
	}

	w.Header().Set("Content-Type", ContentTypeCSV+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", source.Label()+"_normalized.csv"))
	w.Header().Set("X-Rows-Read", strconv.Itoa(stats.Read))
	w.Header().Set("X-Rows-Accepted", strconv.Itoa(stats.Accepted))
	w.WriteHeader(http.StatusOK)

	if err := exporter.Write(w, exporter.WriteOptions{Headers: gainers.Header, Records: gainers.CSVRows(records)}); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write CSV response", slog.String("error", err.Error()))
	}
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part)); err == nil && mediaType == "application/json" {
			return true
		}
	}
	return false
}
