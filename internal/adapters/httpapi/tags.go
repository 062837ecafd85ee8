package httpapi

import (
	"net/http"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
)

type tagRequest struct {
	TagName string `json:"tagName"`
	Note    string `json:"note"`
}

type tagResponse struct {
	TagID   int64  `json:"tagId"`
	TagName string `json:"tagName"`
	Note    string `json:"note"`
}

func toTagResponse(t domain.Tag) tagResponse {
	return tagResponse{TagID: t.ID, TagName: t.Name, Note: t.Note}
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tag, err := h.tags.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

func (h *Handler) createTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !h.decodeBody(w, r, schemaTag, &req) {
		return
	}
	tag, err := h.tags.Create(r.Context(), actorFromContext(r.Context()), usecase.TagInput{Name: req.TagName, Note: req.Note})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTagResponse(tag))
}

func (h *Handler) updateTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req tagRequest
	if !h.decodeBody(w, r, schemaTag, &req) {
		return
	}
	tag, err := h.tags.Update(r.Context(), actorFromContext(r.Context()), id, usecase.TagInput{Name: req.TagName, Note: req.Note})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

func (h *Handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.tags.Delete(r.Context(), actorFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
