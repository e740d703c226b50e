package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, true)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) db.User {
	t.Helper()
	user := db.User{Username: username, Password: "x", Role: db.RoleEditor}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedRegion(t *testing.T, gdb *gorm.DB, name, status string) db.Region {
	t.Helper()
	region, err := NewRegionService(gdb).Create(RegionInput{Name: name, Status: status})
	if err != nil {
		t.Fatalf("seed region %s: %v", name, err)
	}
	return *region
}

func seedPublishedPost(t *testing.T, gdb *gorm.DB, userID uint, title string) db.Post {
	t.Helper()
	svc := NewPostService(gdb)
	post, err := svc.Create(PostInput{
		Title:       title,
		Content:     "正文内容 " + title,
		UserID:      userID,
		CoverURL:    "https://example.com/cover.jpg",
		CoverWidth:  1200,
		CoverHeight: 800,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	published, err := svc.Publish(post.ID, nil)
	if err != nil {
		t.Fatalf("publish post: %v", err)
	}
	return *published
}

func uintPtr(v uint) *uint { return &v }
