package service

import (
	"errors"
	"strings"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTagExists      = errors.New("tag already exists")
	ErrTagInUse       = errors.New("tag is associated with posts")
	ErrTagNotFound    = errors.New("tag not found")
	ErrTagNameMissing = errors.New("tag name is required")
)

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// TagUsage 描述标签在已发布文章中的使用次数
type TagUsage struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns tags with post counts ordered by configured sort order.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.
		Model(&db.Tag{}).
		Select("tags.*, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.sort_order asc").
		Order("tags.name asc").
		Order("tags.id asc").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// PublishedUsage 返回已发布文章中标签的使用统计，未被使用的标签不出现
func (s *TagService) PublishedUsage() ([]TagUsage, error) {
	usages := []TagUsage{}
	if err := s.db.Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT posts.id) AS count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id").
		Where("posts.status = ?", db.StatusPublished).
		Group("tags.id, tags.name").
		Order("tags.sort_order asc").
		Order("tags.name asc").
		Order("tags.id asc").
		Scan(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// Create inserts a new tag with unique name.
func (s *TagService) Create(name string) (*db.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameMissing
	}

	var existing db.Tag
	if err := s.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, ErrTagExists
	}

	sortOrder, err := nextSortOrder(s.db, &db.Tag{})
	if err != nil {
		return nil, err
	}

	tag := db.Tag{Name: name, SortOrder: sortOrder}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Update changes the tag name while keeping uniqueness.
func (s *TagService) Update(id uint, name string) (*db.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameMissing
	}

	var tag db.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	var existing db.Tag
	if err := s.db.Where("name = ? AND id <> ?", name, id).First(&existing).Error; err == nil {
		return nil, ErrTagExists
	}

	tag.Name = name
	if err := s.db.Save(&tag).Error; err != nil {
		return nil, err
	}

	count, err := s.postUsageCount(tag.ID)
	if err != nil {
		return nil, err
	}
	tag.PostCount = count

	return &tag, nil
}

// Delete removes a tag if it is not associated with posts.
func (s *TagService) Delete(id uint) error {
	var tag db.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	count, err := s.postUsageCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTagInUse
	}

	return s.db.Delete(&tag).Error
}

// Reorder updates tag sort order based on the provided ids sequence.
func (s *TagService) Reorder(ids []uint) error {
	return reorder(s.db, &db.Tag{}, ids, ErrTagNotFound)
}

func (s *TagService) postUsageCount(id uint) (int64, error) {
	var count int64
	if err := s.db.Table("post_tags").
		Where("tag_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
