package httpapi

import (
	"net/http"
	"strings"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
)

type accountCreateRequest struct {
	AccountEmail    string             `json:"accountEmail"`
	AccountName     string             `json:"accountName"`
	AccountRole     domain.AccountRole `json:"accountRole"`
	AccountPassword string             `json:"accountPassword"`
}

type accountUpdateRequest struct {
	AccountEmail string             `json:"accountEmail"`
	AccountName  string             `json:"accountName"`
	AccountRole  domain.AccountRole `json:"accountRole"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// accountResponse has no password field; the hash never leaves the service.
type accountResponse struct {
	AccountID    int64              `json:"accountId"`
	AccountEmail string             `json:"accountEmail"`
	AccountName  string             `json:"accountName"`
	AccountRole  domain.AccountRole `json:"accountRole"`
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		AccountID:    a.ID,
		AccountEmail: a.Email,
		AccountName:  a.Name,
		AccountRole:  a.Role,
	}
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	filter := domain.AccountFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	role, err := queryInt64(r, "role")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if role != nil {
		ar := domain.AccountRole(*role)
		filter.Role = &ar
	}

	accounts, err := h.accounts.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountCreateRequest
	if !h.decodeBody(w, r, schemaAccountCreate, &req) {
		return
	}
	account, err := h.accounts.Create(r.Context(), actorFromContext(r.Context()), usecase.AccountInput{
		Email:    req.AccountEmail,
		Name:     req.AccountName,
		Role:     req.AccountRole,
		Password: req.AccountPassword,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req accountUpdateRequest
	if !h.decodeBody(w, r, schemaAccountUpdate, &req) {
		return
	}
	account, err := h.accounts.Update(r.Context(), actorFromContext(r.Context()), id, usecase.AccountUpdate{
		Email: req.AccountEmail,
		Name:  req.AccountName,
		Role:  req.AccountRole,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req changePasswordRequest
	if !h.decodeBody(w, r, schemaChangePassword, &req) {
		return
	}
	if err := h.accounts.ChangePassword(r.Context(), actorFromContext(r.Context()), id, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.accounts.Delete(r.Context(), actorFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
