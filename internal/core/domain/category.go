package domain

const EntityCategory = "Category"

type Category struct {
	ID          int64
	Name        string
	Description string
	ParentID    *int64
	IsActive    bool
}

type CategorySnapshot struct {
	CategoryID          int64  `json:"categoryId"`
	CategoryName        string `json:"categoryName"`
	CategoryDescription string `json:"categoryDescription"`
	ParentCategoryID    *int64 `json:"parentCategoryId"`
	IsActive            bool   `json:"isActive"`
}

func (c Category) EntityName() string { return EntityCategory }

func (c Category) AuditKey() any {
	return map[string]int64{"categoryId": c.ID}
}

func (c Category) AuditSnapshot() any {
	return CategorySnapshot{
		CategoryID:          c.ID,
		CategoryName:        c.Name,
		CategoryDescription: c.Description,
		ParentCategoryID:    c.ParentID,
		IsActive:            c.IsActive,
	}
}

// SameParent reports whether p points at the same parent as the category.
func (c Category) SameParent(p *int64) bool {
	if c.ParentID == nil || p == nil {
		return c.ParentID == nil && p == nil
	}
	return *c.ParentID == *p
}

type CategoryWithArticleCount struct {
	Category
	ParentName   string
	ArticleCount int64
}
