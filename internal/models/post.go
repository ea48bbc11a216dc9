package models

// PostModel is an entry in the public feed.
type PostModel struct {
	Base
	AuthorID string `json:"author_id" gorm:"index;not null"`
	Body     string `json:"body"      gorm:"type:longtext"`
	Likes    int64  `json:"likes"`
}

func (PostModel) TableName() string { return "posts" }
