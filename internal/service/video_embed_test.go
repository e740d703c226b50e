package service

import (
	"errors"
	"strings"
	"testing"
)

func TestParseVideoURL(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		platform string
		embed    string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", VideoPlatformYouTube, "https://www.youtube.com/embed/dQw4w9WgXcQ?"},
		{"youtube short link with time", "https://youtu.be/dQw4w9WgXcQ?t=1m30s", VideoPlatformYouTube, "start=90"},
		{"youtube shorts without scheme", "youtube.com/shorts/abcDEF", VideoPlatformYouTube, "/embed/abcDEF?"},
		{"vimeo", "https://vimeo.com/76979871", VideoPlatformVimeo, "https://player.vimeo.com/video/76979871"},
		{"vimeo channel", "https://vimeo.com/channels/staffpicks/123456", VideoPlatformVimeo, "/video/123456"},
		{"vimeo player", "https://player.vimeo.com/video/998877", VideoPlatformVimeo, "/video/998877"},
		{"bilibili bv", "https://www.bilibili.com/video/BV1xx411c7mD?p=2", VideoPlatformBilibili, "bvid=BV1xx411c7mD"},
		{"bilibili av", "https://www.bilibili.com/video/av170001", VideoPlatformBilibili, "aid=170001"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			embed, err := ParseVideoURL(tc.raw)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.raw, err)
			}
			if embed.Platform != tc.platform {
				t.Fatalf("expected platform %s, got %s", tc.platform, embed.Platform)
			}
			if !strings.Contains(embed.EmbedURL, tc.embed) {
				t.Fatalf("expected embed url to contain %q, got %q", tc.embed, embed.EmbedURL)
			}
		})
	}
}

func TestParseVideoURLBilibiliPage(t *testing.T) {
	embed, err := ParseVideoURL("https://www.bilibili.com/video/BV1xx411c7mD?p=2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(embed.EmbedURL, "page=2") {
		t.Fatalf("expected page=2 in %q", embed.EmbedURL)
	}
}

func TestParseVideoURLYouTubeThumbnail(t *testing.T) {
	embed, err := ParseVideoURL("https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if embed.ThumbnailURL != "https://i.ytimg.com/vi/abc/hqdefault.jpg" {
		t.Fatalf("unexpected thumbnail %q", embed.ThumbnailURL)
	}
}

func TestParseVideoURLRejectsUnsupported(t *testing.T) {
	for _, raw := range []string{
		"",
		"not a url",
		"ftp://youtube.com/watch?v=x",
		"https://example.com/video.mp4",
		"https://www.youtube.com/watch",
		"https://vimeo.com/about",
		"https://www.bilibili.com/bangumi/play/ss1",
		"https://www.douyin.com/video/123",
	} {
		if _, err := ParseVideoURL(raw); !errors.Is(err, ErrVideoURLUnsupported) {
			t.Fatalf("expected ErrVideoURLUnsupported for %q, got %v", raw, err)
		}
	}
}
