package httpapi

import (
	"net/http"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
)

type categoryRequest struct {
	CategoryName        string `json:"categoryName"`
	CategoryDescription string `json:"categoryDescription"`
	ParentCategoryID    *int64 `json:"parentCategoryId"`
	IsActive            *bool  `json:"isActive"`
}

func (req categoryRequest) input() usecase.CategoryInput {
	return usecase.CategoryInput{
		Name:        req.CategoryName,
		Description: req.CategoryDescription,
		ParentID:    req.ParentCategoryID,
		IsActive:    req.IsActive,
	}
}

type categoryResponse struct {
	CategoryID          int64  `json:"categoryId"`
	CategoryName        string `json:"categoryName"`
	CategoryDescription string `json:"categoryDescription"`
	ParentCategoryID    *int64 `json:"parentCategoryId"`
	IsActive            bool   `json:"isActive"`
}

type categoryCountResponse struct {
	categoryResponse
	ParentCategoryName string `json:"parentCategoryName,omitempty"`
	ArticleCount       int64  `json:"articleCount"`
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{
		CategoryID:          c.ID,
		CategoryName:        c.Name,
		CategoryDescription: c.Description,
		ParentCategoryID:    c.ParentID,
		IsActive:            c.IsActive,
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listCategoriesWithCount(w http.ResponseWriter, r *http.Request) {
	rows, err := h.categories.ListWithArticleCount(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]categoryCountResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryCountResponse{
			categoryResponse:   toCategoryResponse(row.Category),
			ParentCategoryName: row.ParentName,
			ArticleCount:       row.ArticleCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decodeBody(w, r, schemaCategory, &req) {
		return
	}
	category, err := h.categories.Create(r.Context(), actorFromContext(r.Context()), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req categoryRequest
	if !h.decodeBody(w, r, schemaCategory, &req) {
		return
	}
	category, err := h.categories.Update(r.Context(), actorFromContext(r.Context()), id, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) toggleCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	category, err := h.categories.ToggleActive(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.categories.Delete(r.Context(), actorFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
