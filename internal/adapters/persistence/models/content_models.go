package models

import "time"

// Content kinds
const (
	ContentPost    = "post"
	ContentComment = "comment"
)

// ThreadedContent is forum content that can be voted on, edited and soft-deleted.
// The mutators are pure in-memory transitions; persisting them is the caller's job.
type ThreadedContent interface {
	ContentKind() string
	ContentID() uint
	AuthorMemberID() uint
	ParentContentID() *uint
	Votes() (up, down int)
	Upvote()
	Downvote()
	IsSoftDeleted() bool
	SoftDelete()
}

// ForumPost represents forum_posts table
type ForumPost struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Category   string    `gorm:"size:50;not null;index" json:"category"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	ParentID   *uint     `gorm:"index" json:"parent_id,omitempty"`
	Upvotes    int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes  int       `gorm:"not null;default:0" json:"downvotes"`
	IsApproved bool      `gorm:"default:true" json:"is_approved"`
	IsDeleted  bool      `gorm:"default:false;index" json:"is_deleted"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author *Member `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (ForumPost) TableName() string {
	return "forum_posts"
}

func (p *ForumPost) ContentKind() string    { return ContentPost }
func (p *ForumPost) ContentID() uint        { return p.ID }
func (p *ForumPost) AuthorMemberID() uint   { return p.AuthorID }
func (p *ForumPost) ParentContentID() *uint { return p.ParentID }
func (p *ForumPost) Votes() (int, int)      { return p.Upvotes, p.Downvotes }
func (p *ForumPost) Upvote()                { p.Upvotes++ }
func (p *ForumPost) Downvote()              { p.Downvotes++ }
func (p *ForumPost) IsSoftDeleted() bool    { return p.IsDeleted }
func (p *ForumPost) SoftDelete()            { p.IsDeleted = true }

// Comment represents comments table
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Upvotes   int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int       `gorm:"not null;default:0" json:"downvotes"`
	IsDeleted bool      `gorm:"default:false;index" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author *Member `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) ContentKind() string    { return ContentComment }
func (c *Comment) ContentID() uint        { return c.ID }
func (c *Comment) AuthorMemberID() uint   { return c.AuthorID }
func (c *Comment) ParentContentID() *uint { return c.ParentID }
func (c *Comment) Votes() (int, int)      { return c.Upvotes, c.Downvotes }
func (c *Comment) Upvote()                { c.Upvotes++ }
func (c *Comment) Downvote()              { c.Downvotes++ }
func (c *Comment) IsSoftDeleted() bool    { return c.IsDeleted }
func (c *Comment) SoftDelete()            { c.IsDeleted = true }

// PrayerRequest represents prayer_requests table
type PrayerRequest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Category     string    `gorm:"size:50" json:"category"`
	SubmitterID  uint      `gorm:"not null;index" json:"submitter_id"`
	IsAnonymous  bool      `gorm:"default:false" json:"is_anonymous"`
	Answered     bool      `gorm:"default:false" json:"answered"`
	PrayerPoints []string  `gorm:"serializer:json" json:"prayer_points"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PrayerRequest) TableName() string {
	return "prayer_requests"
}

// MarkAnswered flags the request as answered. Calling it again has no effect.
func (p *PrayerRequest) MarkAnswered() {
	p.Answered = true
}

// PrayerRequestResponse hides the submitter of anonymous requests
type PrayerRequestResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	Category     string    `json:"category,omitempty"`
	SubmitterID  *uint     `json:"submitter_id,omitempty"`
	IsAnonymous  bool      `json:"is_anonymous"`
	Answered     bool      `json:"answered"`
	PrayerPoints []string  `json:"prayer_points,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *PrayerRequest) ToResponse() *PrayerRequestResponse {
	resp := &PrayerRequestResponse{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Category:     p.Category,
		IsAnonymous:  p.IsAnonymous,
		Answered:     p.Answered,
		PrayerPoints: p.PrayerPoints,
		CreatedAt:    p.CreatedAt,
	}
	if !p.IsAnonymous {
		id := p.SubmitterID
		resp.SubmitterID = &id
	}
	return resp
}
