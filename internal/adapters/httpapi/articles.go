package httpapi

import (
	"net/http"
	"strings"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
)

type articleRequest struct {
	NewsTitle   string  `json:"newsTitle"`
	Headline    string  `json:"headline"`
	NewsContent string  `json:"newsContent"`
	NewsSource  string  `json:"newsSource"`
	CategoryID  *int64  `json:"categoryId"`
	NewsStatus  *bool   `json:"newsStatus"`
	ImageURL    string  `json:"imageUrl"`
	TagIDs      []int64 `json:"tagIds"`
}

func (req articleRequest) input() usecase.ArticleInput {
	return usecase.ArticleInput{
		Title:      req.NewsTitle,
		Headline:   req.Headline,
		Content:    req.NewsContent,
		Source:     req.NewsSource,
		CategoryID: req.CategoryID,
		Status:     req.NewsStatus,
		ImageURL:   req.ImageURL,
		TagIDs:     req.TagIDs,
	}
}

type articleResponse struct {
	NewsArticleID int64   `json:"newsArticleId"`
	NewsTitle     string  `json:"newsTitle"`
	Headline      string  `json:"headline"`
	NewsContent   string  `json:"newsContent"`
	NewsSource    string  `json:"newsSource"`
	CategoryID    *int64  `json:"categoryId"`
	NewsStatus    bool    `json:"newsStatus"`
	CreatedByID   *int64  `json:"createdById"`
	UpdatedByID   *int64  `json:"updatedById"`
	CreatedDate   string  `json:"createdDate"`
	ModifiedDate  *string `json:"modifiedDate"`
	ImageURL      string  `json:"imageUrl"`
	TagIDs        []int64 `json:"tagIds"`
}

func toArticleResponse(a domain.Article) articleResponse {
	out := articleResponse{
		NewsArticleID: a.ID,
		NewsTitle:     a.Title,
		Headline:      a.Headline,
		NewsContent:   a.Content,
		NewsSource:    a.Source,
		CategoryID:    a.CategoryID,
		NewsStatus:    a.Status,
		CreatedByID:   a.CreatedByID,
		UpdatedByID:   a.UpdatedByID,
		CreatedDate:   a.CreatedAt.UTC().Format(timeFormat),
		ImageURL:      a.ImageURL,
		TagIDs:        append([]int64{}, a.TagIDs...),
	}
	if a.ModifiedAt != nil {
		modified := a.ModifiedAt.UTC().Format(timeFormat)
		out.ModifiedDate = &modified
	}
	return out
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt64(r, "categoryId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status, err := queryBool(r, "status")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	articles, err := h.articles.List(r.Context(), domain.ArticleFilter{
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		CategoryID: categoryID,
		Status:     status,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	article, err := h.articles.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handler) createArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !h.decodeBody(w, r, schemaArticle, &req) {
		return
	}
	article, err := h.articles.Create(r.Context(), actorFromContext(r.Context()), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toArticleResponse(article))
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req articleRequest
	if !h.decodeBody(w, r, schemaArticle, &req) {
		return
	}
	article, err := h.articles.Update(r.Context(), actorFromContext(r.Context()), id, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.articles.Delete(r.Context(), actorFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
