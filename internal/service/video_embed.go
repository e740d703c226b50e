package service

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	VideoPlatformYouTube  = "youtube"
	VideoPlatformVimeo    = "vimeo"
	VideoPlatformBilibili = "bilibili"
)

var ErrVideoURLUnsupported = errors.New("video url is not a supported youtube, vimeo or bilibili link")

var videoTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`) // YouTube t=1h2m3s

// VideoEmbed 描述从外部视频链接解析出的播放器信息。
type VideoEmbed struct {
	Platform     string
	VideoID      string
	Source       string
	EmbedURL     string
	ThumbnailURL string
}

// ParseVideoURL 解析 YouTube / Vimeo / Bilibili 链接，缺少协议时补全为 https。
func ParseVideoURL(raw string) (VideoEmbed, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "<")
	trimmed = strings.TrimSuffix(trimmed, ">")
	trimmed = normalizeVideoURL(trimmed)

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil {
		return VideoEmbed{}, ErrVideoURLUnsupported
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return VideoEmbed{}, ErrVideoURLUnsupported
	}
	if parsed.Hostname() == "" {
		return VideoEmbed{}, ErrVideoURLUnsupported
	}

	if embed, ok := parseYouTube(parsed, trimmed); ok {
		return embed, nil
	}
	if embed, ok := parseVimeo(parsed, trimmed); ok {
		return embed, nil
	}
	if embed, ok := parseBilibili(parsed, trimmed); ok {
		return embed, nil
	}
	return VideoEmbed{}, ErrVideoURLUnsupported
}

func normalizeVideoURL(raw string) string {
	if raw == "" {
		return raw
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	for _, prefix := range []string{
		"youtube.com/", "www.youtube.com/", "m.youtube.com/", "youtu.be/",
		"vimeo.com/", "www.vimeo.com/", "player.vimeo.com/",
		"bilibili.com/", "www.bilibili.com/", "m.bilibili.com/",
	} {
		if strings.HasPrefix(lower, prefix) {
			return "https://" + raw
		}
	}
	return raw
}

func parseYouTube(u *url.URL, source string) (VideoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	var videoID string

	switch {
	case host == "youtu.be":
		videoID = strings.Trim(u.Path, "/")
	case isHostOrSubdomain(host, "youtube.com"), isHostOrSubdomain(host, "youtube-nocookie.com"):
		path := strings.Trim(u.Path, "/")
		switch {
		case path == "watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"):
			videoID = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "embed/"):
			videoID = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "live/"):
			videoID = strings.TrimPrefix(path, "live/")
		}
	default:
		return VideoEmbed{}, false
	}
	if idx := strings.Index(videoID, "/"); idx >= 0 {
		videoID = videoID[:idx]
	}
	if videoID == "" {
		return VideoEmbed{}, false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("modestbranding", "1")
	values.Set("playsinline", "1")
	if start := parseYouTubeStart(u); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}

	return VideoEmbed{
		Platform:     VideoPlatformYouTube,
		VideoID:      videoID,
		Source:       source,
		EmbedURL:     fmt.Sprintf("https://www.youtube.com/embed/%s?%s", videoID, values.Encode()),
		ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
	}, true
}

func parseYouTubeStart(u *url.URL) int {
	query := u.Query()
	if value := query.Get("start"); value != "" {
		return parseYouTubeTime(value)
	}
	if value := query.Get("t"); value != "" {
		return parseYouTubeTime(value)
	}
	return 0
}

func parseYouTubeTime(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	if onlyDigits(trimmed) {
		seconds, err := strconv.Atoi(trimmed)
		if err == nil && seconds > 0 {
			return seconds
		}
		return 0
	}

	total := 0
	for _, match := range videoTimePattern.FindAllStringSubmatch(trimmed, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n <= 0 {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}
	return total
}

// parseVimeo 支持 vimeo.com/<id>、vimeo.com/channels/x/<id> 与 player.vimeo.com/video/<id>。
func parseVimeo(u *url.URL, source string) (VideoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	if !isHostOrSubdomain(host, "vimeo.com") {
		return VideoEmbed{}, false
	}

	videoID := ""
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if onlyDigits(segments[i]) {
			videoID = segments[i]
			break
		}
	}
	if videoID == "" {
		return VideoEmbed{}, false
	}

	return VideoEmbed{
		Platform: VideoPlatformVimeo,
		VideoID:  videoID,
		Source:   source,
		EmbedURL: fmt.Sprintf("https://player.vimeo.com/video/%s?dnt=1", videoID),
	}, true
}

func parseBilibili(u *url.URL, source string) (VideoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	if !isHostOrSubdomain(host, "bilibili.com") {
		return VideoEmbed{}, false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] != "video" || segments[1] == "" {
		return VideoEmbed{}, false
	}
	rawID := segments[1]

	values := url.Values{}
	lowerID := strings.ToLower(rawID)
	switch {
	case strings.HasPrefix(lowerID, "bv"):
		values.Set("bvid", rawID)
	case strings.HasPrefix(lowerID, "av") && onlyDigits(lowerID[2:]):
		values.Set("aid", lowerID[2:])
	case onlyDigits(rawID):
		values.Set("aid", rawID)
	default:
		return VideoEmbed{}, false
	}
	values.Set("page", strconv.Itoa(parsePositiveInt(u.Query().Get("p"), 1)))
	values.Set("high_quality", "1")
	values.Set("danmaku", "0")
	values.Set("autoplay", "0")

	return VideoEmbed{
		Platform: VideoPlatformBilibili,
		VideoID:  rawID,
		Source:   source,
		EmbedURL: "https://player.bilibili.com/player.html?" + values.Encode(),
	}, true
}

func parsePositiveInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func isHostOrSubdomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
