package models

// MaxTagNameLength is the size of tags.name in characters.
const MaxTagNameLength = 100

// Tag is a shared label. Names are unique by exact trimmed string.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// PostTag links a post to a tag.
type PostTag struct {
	PostID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName returns the database table name for PostTag.
func (PostTag) TableName() string {
	return "post_tags"
}
