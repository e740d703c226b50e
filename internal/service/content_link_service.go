package service

import (
	"errors"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrLinkSource = errors.New("content cannot be used as a link source")
	ErrLinkTarget = errors.New("links may only point to posts, photos or videos")
	ErrLinkSelf   = errors.New("content cannot link to itself")
)

// LinkedContent is one resolved entry of a source's related-content block.
type LinkedContent struct {
	ContentSummary
	SortOrder int `json:"sort_order"`
}

// ContentLinkService manages related-content links between items.
type ContentLinkService struct {
	db       *gorm.DB
	resolver *ContentResolver
}

// NewContentLinkService creates a ContentLinkService instance.
func NewContentLinkService(gdb *gorm.DB) *ContentLinkService {
	return &ContentLinkService{db: gdb, resolver: NewContentResolver(gdb)}
}

// Link attaches target to source. Linking an existing pair is a no-op.
func (s *ContentLinkService) Link(source, target ContentRef) (*db.ContentLink, error) {
	if err := s.validate(source, target); err != nil {
		return nil, err
	}

	var link db.ContentLink
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := nextSortOrder(tx, &db.ContentLink{}, "source_type = ? AND source_id = ?", source.Type, source.ID)
		if err != nil {
			return err
		}
		row := db.ContentLink{
			SourceType: source.Type,
			SourceID:   source.ID,
			TargetType: target.Type,
			TargetID:   target.ID,
			SortOrder:  order,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Where("source_type = ? AND source_id = ? AND target_type = ? AND target_id = ?",
			source.Type, source.ID, target.Type, target.ID).First(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Unlink removes the pair if it exists.
func (s *ContentLinkService) Unlink(source, target ContentRef) error {
	return s.db.Where("source_type = ? AND source_id = ? AND target_type = ? AND target_id = ?",
		source.Type, source.ID, target.Type, target.ID).
		Delete(&db.ContentLink{}).Error
}

// Replace sets the full ordered list of targets for source in one transaction.
// Duplicate targets keep their first position.
func (s *ContentLinkService) Replace(source ContentRef, targets []ContentRef) error {
	seen := make(map[ContentRef]struct{}, len(targets))
	ordered := make([]ContentRef, 0, len(targets))
	for _, target := range targets {
		if _, ok := seen[target]; ok {
			continue
		}
		if err := s.validate(source, target); err != nil {
			return err
		}
		seen[target] = struct{}{}
		ordered = append(ordered, target)
	}
	if len(ordered) == 0 {
		if !linkSourceAllowed(source.Type) {
			return ErrLinkSource
		}
		if _, err := s.resolver.Resolve(source); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_type = ? AND source_id = ?", source.Type, source.ID).
			Delete(&db.ContentLink{}).Error; err != nil {
			return err
		}
		if len(ordered) == 0 {
			return nil
		}
		rows := make([]db.ContentLink, 0, len(ordered))
		for idx, target := range ordered {
			rows = append(rows, db.ContentLink{
				SourceType: source.Type,
				SourceID:   source.ID,
				TargetType: target.Type,
				TargetID:   target.ID,
				SortOrder:  idx,
			})
		}
		return tx.Create(&rows).Error
	})
}

// List returns resolved targets of source in sort order. Targets that no
// longer exist are skipped; publishedOnly also hides drafts.
func (s *ContentLinkService) List(source ContentRef, publishedOnly bool) ([]LinkedContent, error) {
	var links []db.ContentLink
	if err := s.db.Where("source_type = ? AND source_id = ?", source.Type, source.ID).
		Order("sort_order asc").Order("id asc").
		Find(&links).Error; err != nil {
		return nil, err
	}

	refs := make([]ContentRef, 0, len(links))
	for _, l := range links {
		refs = append(refs, ContentRef{Type: l.TargetType, ID: l.TargetID})
	}
	summaries, err := s.resolver.ResolveMany(refs)
	if err != nil {
		return nil, err
	}

	out := make([]LinkedContent, 0, len(links))
	for _, l := range links {
		summary, ok := summaries[ContentRef{Type: l.TargetType, ID: l.TargetID}]
		if !ok || (publishedOnly && !summary.Published) {
			continue
		}
		out = append(out, LinkedContent{ContentSummary: *summary, SortOrder: l.SortOrder})
	}
	return out, nil
}

func (s *ContentLinkService) validate(source, target ContentRef) error {
	if !linkSourceAllowed(source.Type) {
		return ErrLinkSource
	}
	if !linkTargetAllowed(target.Type) {
		return ErrLinkTarget
	}
	if source == target {
		return ErrLinkSelf
	}
	if _, err := s.resolver.Resolve(source); err != nil {
		return err
	}
	if _, err := s.resolver.Resolve(target); err != nil {
		return err
	}
	return nil
}

func linkSourceAllowed(t string) bool {
	switch t {
	case db.ContentTypePost, db.ContentTypeRegion, db.ContentTypeHotel, db.ContentTypeActivity,
		db.ContentTypeGallery, db.ContentTypeVideo:
		return true
	}
	return false
}

func linkTargetAllowed(t string) bool {
	switch t {
	case db.ContentTypePost, db.ContentTypePhoto, db.ContentTypeVideo:
		return true
	}
	return false
}
