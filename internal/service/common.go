package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tourcms/internal/db"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken     = errors.New("slug already in use")
	ErrSlugInvalid   = errors.New("slug is invalid")
	ErrStatusInvalid = errors.New("status is invalid")
	ErrCoverInvalid  = errors.New("cover dimensions are invalid")
	ErrOrderInvalid  = errors.New("invalid sort order")
	ErrContentType   = errors.New("content type is invalid")
	ErrContentAbsent = errors.New("referenced content not found")
)

var fieldValidator = validator.New()

// validEmail 与 handler 层 binding:"email" 使用同一套规则。
func validEmail(email string) bool {
	return fieldValidator.Var(email, "required,email") == nil
}

// SlugPattern 描述合法的 slug：小写字母数字，以单个连字符分隔。
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// ListResult aggregates one page of items with pagination counters.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
}

// HasMore reports whether a following page exists.
func (r ListResult[T]) HasMore() bool {
	return r.Page < r.TotalPages
}

// paginate 使用两个独立构建的查询分别计数与取数，避免复用同一 *gorm.DB 链。
func paginate[T any](count, data *gorm.DB, page, perPage, fallback int, order ...string) (ListResult[T], error) {
	result := ListResult[T]{
		Page:    normalizePage(page),
		PerPage: normalizePerPage(perPage, fallback),
		Items:   []T{},
	}

	if err := count.Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	for _, o := range order {
		data = data.Order(o)
	}
	offset := (result.Page - 1) * result.PerPage
	if err := data.Limit(result.PerPage).Offset(offset).Find(&result.Items).Error; err != nil {
		return result, err
	}
	return result, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// Slugify 把标题转换为 URL 友好的 slug，去掉变音符号；无法转写的字符会被丢弃。
func Slugify(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, value)
	if err != nil {
		plain = value
	}
	plain = strings.ToLower(plain)
	plain = slugSeparator.ReplaceAllString(plain, "-")
	plain = strings.Trim(plain, "-")
	if len(plain) > 120 {
		plain = strings.TrimRight(plain[:120], "-")
	}
	return plain
}

// resolveSlug 校验显式 slug 的唯一性；未提供时从标题派生并自动追加序号。
func resolveSlug(tx *gorm.DB, model any, explicit, title, fallbackPrefix string, excludeID uint) (string, error) {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if explicit != "" {
		if !SlugPattern.MatchString(explicit) {
			return "", ErrSlugInvalid
		}
		taken, err := slugExists(tx, model, explicit, excludeID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return explicit, nil
	}

	base := Slugify(title)
	if base == "" {
		base = fmt.Sprintf("%s-%s", fallbackPrefix, strings.Split(uuid.NewString(), "-")[0])
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := slugExists(tx, model, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugExists(tx *gorm.DB, model any, slug string, excludeID uint) (bool, error) {
	var count int64
	query := tx.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// normalizeStatus 为空时回退为草稿，只接受 published/draft。
func normalizeStatus(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "":
		return db.StatusDraft, nil
	case db.StatusDraft, db.StatusPublished:
		return status, nil
	default:
		return "", ErrStatusInvalid
	}
}

func normalizeCover(url string, width, height int) (db.Cover, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return db.Cover{}, nil
	}
	if width <= 0 || height <= 0 {
		return db.Cover{}, ErrCoverInvalid
	}
	return db.Cover{CoverURL: url, CoverWidth: width, CoverHeight: height}, nil
}

// likePattern 返回小写的模糊匹配串，配合 LOWER(col) LIKE ? 在 postgres 上也不区分大小写。
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// reorder 按 ids 顺序重写 sort_order，ids 不能为空值或重复。
func reorder(gdb *gorm.DB, model any, ids []uint, notFound error) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return ErrOrderInvalid
		}
		if _, ok := seen[id]; ok {
			return ErrOrderInvalid
		}
		seen[id] = struct{}{}
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		for idx, id := range ids {
			result := tx.Model(model).Where("id = ?", id).Update("sort_order", idx)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return notFound
			}
		}
		return nil
	})
}

func nextSortOrder(gdb *gorm.DB, model any, scope ...any) (int, error) {
	var maxOrder int
	query := gdb.Model(model).Select("COALESCE(MAX(sort_order), -1)")
	if len(scope) > 0 {
		query = query.Where(scope[0], scope[1:]...)
	}
	if err := query.Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

// purgeContentRefs 删除内容时清理所有多态引用：关联、评论、轮播与浏览统计。
func purgeContentRefs(tx *gorm.DB, contentType string, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("(source_type = ? AND source_id IN ?) OR (target_type = ? AND target_id IN ?)",
		contentType, ids, contentType, ids).Delete(&db.ContentLink{}).Error; err != nil {
		return err
	}
	if err := tx.Where("content_type = ? AND content_id IN ?", contentType, ids).Delete(&db.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("kind = ? AND content_type = ? AND content_id IN ?", db.HeroSlideKindContent, contentType, ids).
		Delete(&db.HeroSlide{}).Error; err != nil {
		return err
	}
	if err := tx.Where("content_type = ? AND content_id IN ?", contentType, ids).Delete(&db.ContentVisit{}).Error; err != nil {
		return err
	}
	return tx.Where("content_type = ? AND content_id IN ?", contentType, ids).Delete(&db.ContentStatistic{}).Error
}
