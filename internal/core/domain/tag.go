package domain

const EntityTag = "Tag"

type Tag struct {
	ID   int64
	Name string
	Note string
}

type TagSnapshot struct {
	TagID   int64  `json:"tagId"`
	TagName string `json:"tagName"`
	Note    string `json:"note,omitempty"`
}

func (t Tag) EntityName() string { return EntityTag }

func (t Tag) AuditKey() any {
	return map[string]int64{"tagId": t.ID}
}

func (t Tag) AuditSnapshot() any {
	return TagSnapshot{TagID: t.ID, TagName: t.Name, Note: t.Note}
}
