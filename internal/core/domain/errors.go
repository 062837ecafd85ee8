package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

const (
	RuleInvalidRequest       = "invalid_request"
	RuleInvalidPageSize      = "invalid_page_size"
	RuleTagNameRequired      = "tag_name_required"
	RuleTagNameTaken         = "tag_name_taken"
	RuleTagInUse             = "tag_in_use"
	RuleCategoryNameRequired = "category_name_required"
	RuleCategoryNameTaken    = "category_name_taken"
	RuleCategoryInUse        = "category_in_use"
	RuleCategoryHasChildren  = "category_has_children"
	RuleCategoryParentLocked = "category_parent_locked"
	RuleCategoryParentSelf   = "category_parent_self"
	RuleCategoryNotFound     = "category_not_found"
	RuleAccountEmailTaken    = "account_email_taken"
	RuleAccountHasArticles   = "account_has_articles"
	RuleAccountRoleInvalid   = "account_role_invalid"
	RulePasswordMismatch     = "password_mismatch"
	RulePasswordTooShort     = "password_too_short"
	RuleArticleTitleRequired = "article_title_required"
)

// ValidationError is a rejected write. Rule is a stable identifier clients can switch on.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(rule, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
