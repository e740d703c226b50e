// Package seed 生成演示数据，供本地开发与演示环境使用。
package seed

import (
	"fmt"
	"time"

	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Summary 记录本次生成的数据量
type Summary struct {
	Regions    int
	Hotels     int
	Activities int
	Posts      int
	Videos     int
	Galleries  int
	HeroSlides int
	Skipped    bool
}

type regionSeed struct {
	name      string
	summary   string
	lat       float64
	lng       float64
	cover     string
	hotels    []hotelSeed
	activity  activitySeed
	postTitle string
	postBody  string
	videoURL  string
}

type hotelSeed struct {
	name      string
	stars     int
	priceFrom int64
	amenities []string
}

type activitySeed struct {
	title    string
	category string
	minutes  int
	price    int64
}

var regions = []regionSeed{
	{
		name:    "Lisbon",
		summary: "Hills, trams and pastel de nata on the Atlantic coast.",
		lat:     38.7223,
		lng:     -9.1393,
		cover:   "https://images.unsplash.com/photo-1585208798174-6cedd86e019a?auto=format&fit=crop&w=1600&q=80",
		hotels: []hotelSeed{
			{name: "Alfama Courtyard", stars: 4, priceFrom: 14500, amenities: []string{"wifi", "breakfast", "terrace"}},
			{name: "Baixa Loft Rooms", stars: 3, priceFrom: 8900, amenities: []string{"wifi"}},
		},
		activity:  activitySeed{title: "Fado night in Alfama", category: "culture", minutes: 150, price: 4500},
		postTitle: "Three days in Lisbon",
		postBody:  "## Day one\n\nRide tram 28 early, before the queues.\n\nhttps://www.youtube.com/watch?v=dQw4w9WgXcQ\n\n## Day two\n\nTake the train to Sintra.",
		videoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	},
	{
		name:    "Madeira",
		summary: "Levada walks, laurel forest and volcanic peaks.",
		lat:     32.7607,
		lng:     -16.9595,
		cover:   "https://images.unsplash.com/photo-1565624565-9e0a5d7e1dbd?auto=format&fit=crop&w=1600&q=80",
		hotels: []hotelSeed{
			{name: "Funchal Bay Resort", stars: 5, priceFrom: 26000, amenities: []string{"pool", "spa", "wifi"}},
		},
		activity:  activitySeed{title: "Levada do Caldeirão Verde hike", category: "outdoor", minutes: 300, price: 3500},
		postTitle: "Walking the levadas",
		postBody:  "Pack a headlamp for the tunnels and start before 9am.",
		videoURL:  "https://vimeo.com/76979871",
	},
	{
		name:    "Douro Valley",
		summary: "Terraced vineyards along the river.",
		lat:     41.1621,
		lng:     -7.7868,
		cover:   "https://images.unsplash.com/photo-1560493676-04071c5f467b?auto=format&fit=crop&w=1600&q=80",
		hotels: []hotelSeed{
			{name: "Quinta River House", stars: 4, priceFrom: 18000, amenities: []string{"vineyard", "pool"}},
		},
		activity:  activitySeed{title: "Port tasting cruise", category: "food", minutes: 240, price: 8500},
		postTitle: "Harvest season on the Douro",
		postBody:  "September is busy but worth it: most quintas open their lagares to visitors.",
		videoURL:  "https://www.bilibili.com/video/BV1xx411c7mD",
	},
}

// Run 写入演示数据。已存在区域时跳过，保证可重复执行。
func Run(gdb *gorm.DB, log *zap.Logger) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var summary Summary

	var count int64
	if err := gdb.Model(&db.Region{}).Count(&count).Error; err != nil {
		return summary, err
	}
	if count > 0 {
		log.Info("regions already exist, skip seeding", zap.Int64("regions", count))
		summary.Skipped = true
		return summary, nil
	}

	if err := db.EnsureUser(gdb, "admin", "admin123"); err != nil {
		return summary, fmt.Errorf("seed admin: %w", err)
	}
	var admin db.User
	if err := gdb.Where("username = ?", "admin").First(&admin).Error; err != nil {
		return summary, fmt.Errorf("load admin: %w", err)
	}

	regionSvc := service.NewRegionService(gdb)
	hotelSvc := service.NewHotelService(gdb)
	activitySvc := service.NewActivityService(gdb)
	postSvc := service.NewPostService(gdb)
	videoSvc := service.NewVideoService(gdb)
	gallerySvc := service.NewGalleryService(gdb)
	tagSvc := service.NewTagService(gdb)
	linkSvc := service.NewContentLinkService(gdb)
	heroSvc := service.NewHeroSlideService(gdb)

	tagIDs := make([]uint, 0, 3)
	for _, name := range []string{"Itinerary", "Food", "Hiking"} {
		tag, err := tagSvc.Create(name)
		if err != nil {
			return summary, fmt.Errorf("seed tag %s: %w", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	publishedAt := time.Now().Add(-24 * time.Hour)
	for i, rs := range regions {
		region, err := regionSvc.Create(service.RegionInput{
			Name:        rs.name,
			Summary:     rs.summary,
			Latitude:    rs.lat,
			Longitude:   rs.lng,
			Status:      db.StatusPublished,
			CoverURL:    rs.cover,
			CoverWidth:  1600,
			CoverHeight: 1067,
		})
		if err != nil {
			return summary, fmt.Errorf("seed region %s: %w", rs.name, err)
		}
		summary.Regions++
		regionID := region.ID

		for _, hs := range rs.hotels {
			if _, err := hotelSvc.Create(service.HotelInput{
				Name:      hs.name,
				RegionID:  region.ID,
				Summary:   fmt.Sprintf("%d-star stay in %s", hs.stars, rs.name),
				Stars:     hs.stars,
				PriceFrom: hs.priceFrom,
				Currency:  "EUR",
				Amenities: hs.amenities,
				Status:    db.StatusPublished,
			}); err != nil {
				return summary, fmt.Errorf("seed hotel %s: %w", hs.name, err)
			}
			summary.Hotels++
		}

		activity, err := activitySvc.Create(service.ActivityInput{
			Title:           rs.activity.title,
			RegionID:        region.ID,
			Category:        rs.activity.category,
			DurationMinutes: rs.activity.minutes,
			PriceFrom:       rs.activity.price,
			Currency:        "EUR",
			Status:          db.StatusPublished,
		})
		if err != nil {
			return summary, fmt.Errorf("seed activity %s: %w", rs.activity.title, err)
		}
		summary.Activities++

		post, err := postSvc.Create(service.PostInput{
			Title:       rs.postTitle,
			Content:     rs.postBody,
			TagIDs:      []uint{tagIDs[i%len(tagIDs)]},
			RegionID:    &regionID,
			UserID:      admin.ID,
			CoverURL:    rs.cover,
			CoverWidth:  1600,
			CoverHeight: 1067,
		})
		if err != nil {
			return summary, fmt.Errorf("seed post %s: %w", rs.postTitle, err)
		}
		at := publishedAt.Add(time.Duration(i) * time.Hour)
		if _, err := postSvc.Publish(post.ID, &at); err != nil {
			return summary, fmt.Errorf("publish post %s: %w", rs.postTitle, err)
		}
		summary.Posts++

		video, err := videoSvc.Create(service.VideoInput{
			Title:     rs.name + " from above",
			SourceURL: rs.videoURL,
			RegionID:  &regionID,
			Status:    db.StatusPublished,
		})
		if err != nil {
			return summary, fmt.Errorf("seed video for %s: %w", rs.name, err)
		}
		summary.Videos++

		gallery, err := gallerySvc.Create(service.GalleryInput{
			Title:    rs.name + " snapshots",
			RegionID: &regionID,
			Status:   db.StatusPublished,
		})
		if err != nil {
			return summary, fmt.Errorf("seed gallery for %s: %w", rs.name, err)
		}
		// 横图、竖图、方图各一张
		var firstPhoto *db.Photo
		for j, size := range [][2]int{{1600, 1067}, {1100, 1650}, {1200, 1200}} {
			photo, err := gallerySvc.AddPhoto(gallery.ID, service.PhotoInput{
				ImageURL:    fmt.Sprintf("%s&sig=%d", rs.cover, j),
				ImageWidth:  size[0],
				ImageHeight: size[1],
				Caption:     fmt.Sprintf("%s #%d", rs.name, j+1),
			})
			if err != nil {
				return summary, fmt.Errorf("seed photo for %s: %w", rs.name, err)
			}
			if firstPhoto == nil {
				firstPhoto = photo
			}
		}
		summary.Galleries++

		postRef := service.ContentRef{Type: db.ContentTypePost, ID: post.ID}
		if err := linkSvc.Replace(service.ContentRef{Type: db.ContentTypeActivity, ID: activity.ID}, []service.ContentRef{
			postRef,
			{Type: db.ContentTypeVideo, ID: video.ID},
			{Type: db.ContentTypePhoto, ID: firstPhoto.ID},
		}); err != nil {
			return summary, fmt.Errorf("seed links for %s: %w", rs.name, err)
		}

		if _, err := heroSvc.Create(service.HeroSlideInput{
			Kind:        db.HeroSlideKindContent,
			ContentType: db.ContentTypeRegion,
			ContentID:   region.ID,
		}); err != nil {
			return summary, fmt.Errorf("seed hero slide for %s: %w", rs.name, err)
		}
		summary.HeroSlides++
	}

	if _, err := heroSvc.Create(service.HeroSlideInput{
		Kind:        db.HeroSlideKindCustom,
		Title:       "Discover Portugal",
		Subtitle:    "Coast, islands and wine country",
		ImageURL:    regions[0].cover,
		LinkURL:     "/regions",
		ButtonLabel: "Explore regions",
	}); err != nil {
		return summary, fmt.Errorf("seed custom hero slide: %w", err)
	}
	summary.HeroSlides++

	if _, err := service.NewPageService(gdb).SaveBySlug("about", service.PageInput{
		Title:   "About us",
		Summary: "Independent travel notes from Portugal.",
		Content: "## Who we are\n\nA small team of guides writing about the places we love.",
	}); err != nil {
		return summary, fmt.Errorf("seed about page: %w", err)
	}
	if _, err := service.NewSystemSettingService(gdb).UpdateSettings(service.SiteSettings{
		SiteName:     "Tour CMS",
		ContactEmail: "hello@example.travel",
	}); err != nil {
		return summary, fmt.Errorf("seed settings: %w", err)
	}

	log.Info("demo data seeded",
		zap.Int("regions", summary.Regions),
		zap.Int("hotels", summary.Hotels),
		zap.Int("posts", summary.Posts),
		zap.Int("hero_slides", summary.HeroSlides),
	)
	return summary, nil
}
