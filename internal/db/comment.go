package db

const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
	CommentStatusSpam     = "spam"
)

// Comment 是挂在任意内容上的访客评论，ParentID 形成回复树
type Comment struct {
	Model
	ContentType string    `gorm:"size:20;index:idx_comment_target;not null" json:"content_type"`
	ContentID   uint      `gorm:"index:idx_comment_target;not null" json:"content_id"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	Parent      *Comment  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Depth       int       `gorm:"default:0" json:"depth"`
	AuthorName  string    `gorm:"size:80;not null" json:"author_name"`
	AuthorEmail string    `gorm:"size:255" json:"-"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	Status      string    `gorm:"size:16;index;default:pending" json:"status"`
	VisitorHash string    `gorm:"size:64;index" json:"-"`
	Replies     []Comment `gorm:"-" json:"replies,omitempty"`
}
