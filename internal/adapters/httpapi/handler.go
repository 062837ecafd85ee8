package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
	"github.com/atvirokodosprendimai/newsroom/internal/observability/middleware"
)

type ctxKey string

const principalCtxKey ctxKey = "principal"

const (
	timeFormat           = "2006-01-02T15:04:05.999999999Z07:00"
	maxJSONBodySize      = 1 << 20
	internalErrorMessage = "internal server error"
)

// Services bundles what the HTTP layer drives.
type Services struct {
	Accounts   *usecase.AccountService
	Categories *usecase.CategoryService
	Tags       *usecase.TagService
	Articles   *usecase.ArticleService
	Audit      *usecase.AuditService
	Auth       *usecase.AuthService
}

type Handler struct {
	accounts   *usecase.AccountService
	categories *usecase.CategoryService
	tags       *usecase.TagService
	articles   *usecase.ArticleService
	audit      *usecase.AuditService
	auth       *usecase.AuthService
	schemas    *requestSchemas
	logger     *slog.Logger
}

func NewHandler(svc Services, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schemas, err := loadRequestSchemas()
	if err != nil {
		return nil, err
	}
	return &Handler{
		accounts:   svc.Accounts,
		categories: svc.Categories,
		tags:       svc.Tags,
		articles:   svc.Articles,
		audit:      svc.Audit,
		auth:       svc.Auth,
		schemas:    schemas,
		logger:     logger,
	}, nil
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestLog(h.logger))
	r.Use(middleware.WithMetrics)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(h.authenticate)

		api.Get("/tags", h.listTags)
		api.Get("/categories", h.listCategories)

		api.Group(func(ed chi.Router) {
			ed.Use(h.requireRole(domain.RoleAdmin, domain.RoleStaff))

			ed.Get("/tags/{id}", h.getTag)
			ed.Post("/tags", h.createTag)
			ed.Put("/tags/{id}", h.updateTag)
			ed.Delete("/tags/{id}", h.deleteTag)

			ed.Get("/categories/with-count", h.listCategoriesWithCount)
			ed.Get("/categories/{id}", h.getCategory)
			ed.Post("/categories", h.createCategory)
			ed.Put("/categories/{id}", h.updateCategory)
			ed.Put("/categories/{id}/toggle-active", h.toggleCategory)
			ed.Delete("/categories/{id}", h.deleteCategory)

			ed.Get("/articles", h.listArticles)
			ed.Get("/articles/{id}", h.getArticle)
			ed.Post("/articles", h.createArticle)
			ed.Put("/articles/{id}", h.updateArticle)
			ed.Delete("/articles/{id}", h.deleteArticle)
		})

		api.Group(func(admin chi.Router) {
			admin.Use(h.requireRole(domain.RoleAdmin))

			admin.Get("/accounts", h.listAccounts)
			admin.Get("/accounts/{id}", h.getAccount)
			admin.Post("/accounts", h.createAccount)
			admin.Put("/accounts/{id}", h.updateAccount)
			admin.Put("/accounts/{id}/password", h.changePassword)
			admin.Delete("/accounts/{id}", h.deleteAccount)

			admin.Get("/audit-logs", h.listAuditLogs)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

// decodeBody checks the body against the named request schema, then decodes it
// strictly into dst. On failure the response has already been written.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.fail(w, r, errInvalidBody)
		return false
	}
	if err := h.schemas.validate(schema, body); err != nil {
		h.fail(w, r, err)
		return false
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		h.fail(w, r, errInvalidBody)
		return false
	}
	if err := ensureEOF(decoder); err != nil {
		h.fail(w, r, errInvalidBody)
		return false
	}
	return true
}

var errInvalidBody = domain.NewValidationError(domain.RuleInvalidRequest, "invalid json body")

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := handleDomainError(w, err); status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("encode json response", "error", err)
		http.Error(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// handleDomainError writes the response for err and returns the status it used.
func handleDomainError(w http.ResponseWriter, err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Message, "rule": ve.Rule})
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
		return http.StatusForbidden
	default:
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return http.StatusInternalServerError
	}
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(domain.RuleInvalidRequest, "id must be a positive integer")
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError(domain.RuleInvalidRequest, name+" must be an integer")
	}
	return &v, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidationError(domain.RuleInvalidRequest, name+" must be a boolean")
	}
	return &v, nil
}

func principalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(domain.Principal)
	return p, ok
}

// actorFromContext returns the caller's email, or "" for anonymous requests.
func actorFromContext(ctx context.Context) string {
	p, _ := principalFromContext(ctx)
	return p.Email
}

func openapiSpec() map[string]any {
	item := func(entity string) map[string]any {
		return map[string]any{
			"get":    map[string]any{"summary": "Get " + entity},
			"put":    map[string]any{"summary": "Update " + entity},
			"delete": map[string]any{"summary": "Delete " + entity},
		}
	}
	collection := func(entity string) map[string]any {
		return map[string]any{
			"get":  map[string]any{"summary": "List " + entity + " records"},
			"post": map[string]any{"summary": "Create " + entity},
		}
	}
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "newsroom",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/api/tags":                          collection("tag"),
			"/api/tags/{id}":                     item("tag"),
			"/api/categories":                    collection("category"),
			"/api/categories/{id}":               item("category"),
			"/api/categories/with-count":         map[string]any{"get": map[string]any{"summary": "List categories with article counts"}},
			"/api/categories/{id}/toggle-active": map[string]any{"put": map[string]any{"summary": "Toggle category active flag"}},
			"/api/articles":                      collection("article"),
			"/api/articles/{id}":                 item("article"),
			"/api/accounts":                      collection("account"),
			"/api/accounts/{id}":                 item("account"),
			"/api/accounts/{id}/password":        map[string]any{"put": map[string]any{"summary": "Change account password"}},
			"/api/audit-logs":                    map[string]any{"get": map[string]any{"summary": "Query the audit log, newest first"}},
		},
	}
}
