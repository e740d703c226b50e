package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"html"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tourcms/internal/db"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	MaxCommentDepth   = 3
	MaxCommentRunes   = 2000
	maxAuthorRunes    = 80
	limiterSweepLimit = 10000
)

var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrCommentBodyMissing = errors.New("comment body is required")
	ErrCommentBodyTooLong = errors.New("comment body is too long")
	ErrCommentAuthor      = errors.New("comment author name is required")
	ErrCommentEmail       = errors.New("comment email is invalid")
	ErrCommentTarget      = errors.New("comments are not allowed on this content")
	ErrCommentParent      = errors.New("parent comment does not belong to this content")
	ErrCommentTooDeep     = errors.New("comment reply depth exceeded")
	ErrCommentStatus      = errors.New("comment status is invalid")
	ErrCommentRateLimited = errors.New("too many comments, please slow down")
)

// CommentInput is what a visitor submits from the public site.
type CommentInput struct {
	ContentType string
	ContentID   uint
	ParentID    *uint
	AuthorName  string
	AuthorEmail string
	Body        string
	VisitorID   string
	// ClientIP 由服务端取自连接，限流优先按它计数
	ClientIP string
}

// CommentFilter describes dashboard moderation filters.
type CommentFilter struct {
	Status      string
	ContentType string
	ContentID   uint
	Page        int
	PerPage     int
}

// CommentService stores visitor comments and builds approved threads.
type CommentService struct {
	db       *gorm.DB
	resolver *ContentResolver
	policy   *bluemonday.Policy
	limiter  *visitorLimiter
	now      func() time.Time
}

// NewCommentService creates a CommentService allowing perMinute comments per
// visitor. perMinute <= 0 disables throttling.
func NewCommentService(gdb *gorm.DB, perMinute int) *CommentService {
	return &CommentService{
		db:       gdb,
		resolver: NewContentResolver(gdb),
		policy:   bluemonday.StrictPolicy(),
		limiter:  newVisitorLimiter(perMinute),
		now:      time.Now,
	}
}

// Create stores a pending comment after validating target, parent and rate.
func (s *CommentService) Create(input CommentInput) (*db.Comment, error) {
	if !commentTargetAllowed(input.ContentType) {
		return nil, ErrCommentTarget
	}
	author := strings.TrimSpace(input.AuthorName)
	if author == "" || utf8.RuneCountInString(author) > maxAuthorRunes {
		return nil, ErrCommentAuthor
	}
	email := strings.TrimSpace(input.AuthorEmail)
	if email != "" {
		if !validEmail(email) {
			return nil, ErrCommentEmail
		}
	}
	body := s.cleanBody(input.Body)
	if body == "" {
		return nil, ErrCommentBodyMissing
	}
	if utf8.RuneCountInString(body) > MaxCommentRunes {
		return nil, ErrCommentBodyTooLong
	}

	target, err := s.resolver.Resolve(ContentRef{Type: input.ContentType, ID: input.ContentID})
	if err != nil {
		if errors.Is(err, ErrContentAbsent) {
			return nil, ErrContentAbsent
		}
		return nil, err
	}
	if !target.Published {
		return nil, ErrContentAbsent
	}

	comment := db.Comment{
		ContentType: input.ContentType,
		ContentID:   input.ContentID,
		AuthorName:  author,
		AuthorEmail: email,
		Body:        body,
		Status:      db.CommentStatusPending,
		VisitorHash: hashVisitor(input.VisitorID),
	}

	if input.ParentID != nil && *input.ParentID != 0 {
		var parent db.Comment
		if err := s.db.First(&parent, *input.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentParent
			}
			return nil, err
		}
		if parent.ContentType != comment.ContentType || parent.ContentID != comment.ContentID {
			return nil, ErrCommentParent
		}
		if parent.Depth+1 > MaxCommentDepth {
			return nil, ErrCommentTooDeep
		}
		parentID := parent.ID
		comment.ParentID = &parentID
		comment.Depth = parent.Depth + 1
	}

	if !s.limiter.allow(throttleKey(input), s.now()) {
		return nil, ErrCommentRateLimited
	}

	if err := s.db.Omit("Parent").Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Thread returns approved comments on one item as a tree. Replies whose
// ancestor is not approved are dropped.
func (s *CommentService) Thread(contentType string, contentID uint) ([]db.Comment, error) {
	var rows []db.Comment
	if err := s.db.Where("content_type = ? AND content_id = ? AND status = ?",
		contentType, contentID, db.CommentStatusApproved).
		Order("created_at asc").Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return buildCommentTree(rows), nil
}

// CountApproved returns the number of approved comments on one item.
func (s *CommentService) CountApproved(contentType string, contentID uint) (int64, error) {
	var count int64
	err := s.db.Model(&db.Comment{}).
		Where("content_type = ? AND content_id = ? AND status = ?", contentType, contentID, db.CommentStatusApproved).
		Count(&count).Error
	return count, err
}

// List returns comments for moderation, newest first.
func (s *CommentService) List(filter CommentFilter) (ListResult[db.Comment], error) {
	build := func() *gorm.DB {
		query := s.db.Model(&db.Comment{})
		if status := strings.TrimSpace(filter.Status); status != "" {
			query = query.Where("status = ?", status)
		}
		if contentType := strings.TrimSpace(filter.ContentType); contentType != "" {
			query = query.Where("content_type = ?", contentType)
		}
		if filter.ContentID != 0 {
			query = query.Where("content_id = ?", filter.ContentID)
		}
		return query
	}
	return paginate[db.Comment](build(), build(), filter.Page, filter.PerPage, 20, "created_at desc", "id desc")
}

// PendingCount returns how many comments wait for moderation.
func (s *CommentService) PendingCount() (int64, error) {
	var count int64
	err := s.db.Model(&db.Comment{}).Where("status = ?", db.CommentStatusPending).Count(&count).Error
	return count, err
}

// Moderate sets a comment status.
func (s *CommentService) Moderate(id uint, status string) (*db.Comment, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case db.CommentStatusPending, db.CommentStatusApproved, db.CommentStatusRejected, db.CommentStatusSpam:
	default:
		return nil, ErrCommentStatus
	}

	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&comment).Update("status", status).Error; err != nil {
		return nil, err
	}
	comment.Status = status
	return &comment, nil
}

// Delete removes a comment together with all of its replies.
func (s *CommentService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var comment db.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}

		ids := []uint{comment.ID}
		frontier := []uint{comment.ID}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&db.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}
		return tx.Where("id IN ?", ids).Delete(&db.Comment{}).Error
	})
}

func (s *CommentService) cleanBody(raw string) string {
	body := html.UnescapeString(s.policy.Sanitize(raw))
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimSpace(body)
}

func commentTargetAllowed(contentType string) bool {
	switch contentType {
	case db.ContentTypePost, db.ContentTypeHotel, db.ContentTypeActivity, db.ContentTypeVideo, db.ContentTypeGallery:
		return true
	}
	return false
}

func buildCommentTree(rows []db.Comment) []db.Comment {
	type node struct {
		comment  db.Comment
		children []*node
	}

	nodes := make(map[uint]*node, len(rows))
	for _, row := range rows {
		nodes[row.ID] = &node{comment: row}
	}

	var roots []*node
	for _, row := range rows {
		n := nodes[row.ID]
		if row.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[*row.ParentID]; ok {
			parent.children = append(parent.children, n)
		}
	}

	var flatten func(n *node) db.Comment
	flatten = func(n *node) db.Comment {
		c := n.comment
		if len(n.children) > 0 {
			c.Replies = make([]db.Comment, 0, len(n.children))
			for _, child := range n.children {
				c.Replies = append(c.Replies, flatten(child))
			}
		}
		return c
	}

	out := make([]db.Comment, 0, len(roots))
	for _, root := range roots {
		out = append(out, flatten(root))
	}
	return out
}

// throttleKey 访客 cookie 可由客户端随意丢弃，因此有来源 IP 时按 IP 计数。
func throttleKey(input CommentInput) string {
	if ip := strings.TrimSpace(input.ClientIP); ip != "" {
		return "ip:" + ip
	}
	return "visitor:" + hashVisitor(input.VisitorID)
}

func hashVisitor(visitorID string) string {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(visitorID))
	return hex.EncodeToString(sum[:])
}

// visitorLimiter 为每个访客维护一个令牌桶。
type visitorLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*visitorBucket
}

type visitorBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(perMinute int) *visitorLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &visitorLimiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		buckets: make(map[string]*visitorBucket),
	}
}

func (l *visitorLimiter) allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) >= limiterSweepLimit {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > time.Hour {
				delete(l.buckets, k)
			}
		}
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &visitorBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}
