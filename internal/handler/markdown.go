package handler

import (
	"bytes"
	"fmt"
	htmlstd "html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tourcms/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	contentSanitizer = buildContentSanitizer()

	videoEmbedLinePattern = regexp.MustCompile(`^\s*<?((?:https?://)?[^\s]+)>?\s*$`)
	videoEmbedSrcPattern  = regexp.MustCompile(
		`^https://(?:www\.youtube\.com/embed/|player\.vimeo\.com/video/|player\.bilibili\.com/player\.html(?:\?|$))`,
	)
	listIndexPattern = regexp.MustCompile(`^\d+\.\s+`)
)

// buildContentSanitizer 在 UGC 策略上额外放行受信任播放器的 iframe。
func buildContentSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-video-embed", "data-video-platform", "data-video-source").OnElements("div")
	policy.AllowAttrs("src").Matching(videoEmbedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy", "sandbox").OnElements("iframe")
	return policy
}

// renderMarkdown 把文章 markdown 渲染为净化后的 HTML，独占一行的视频链接替换为播放器。
func renderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(applyVideoEmbeds(content)), &buf); err != nil {
		return "", err
	}
	return string(contentSanitizer.SanitizeBytes(buf.Bytes())), nil
}

func applyVideoEmbeds(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	inFence := false
	fenceMarker := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := detectFenceMarker(trimmed); marker != "" {
			if inFence {
				if strings.HasPrefix(trimmed, fenceMarker) {
					inFence = false
					fenceMarker = ""
				}
			} else {
				inFence = true
				fenceMarker = marker
			}
			continue
		}
		if inFence || isIndentedCodeLine(line) || shouldSkipEmbedLine(trimmed) {
			continue
		}

		match := videoEmbedLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		embed, err := service.ParseVideoURL(match[1])
		if err != nil {
			continue
		}
		lines[i] = buildVideoEmbedHTML(embed)
	}

	return strings.Join(lines, "\n")
}

func detectFenceMarker(line string) string {
	if strings.HasPrefix(line, "```") {
		return "```"
	}
	if strings.HasPrefix(line, "~~~") {
		return "~~~"
	}
	return ""
}

func isIndentedCodeLine(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

func shouldSkipEmbedLine(line string) bool {
	if line == "" || strings.HasPrefix(line, ">") {
		return true
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return true
	}
	return listIndexPattern.MatchString(line)
}

func buildVideoEmbedHTML(embed service.VideoEmbed) string {
	sandbox := ""
	if embed.Platform == service.VideoPlatformBilibili {
		sandbox = ` sandbox="allow-scripts allow-same-origin allow-presentation"`
	}

	return fmt.Sprintf(
		`<div class="video-embed" data-video-embed="true" data-video-platform="%s" data-video-source="%s">`+
			`<iframe src="%s" title="%s" loading="lazy" allow="accelerometer; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share" allowfullscreen frameborder="0" referrerpolicy="strict-origin-when-cross-origin"%s></iframe>`+
			`</div>`,
		htmlstd.EscapeString(embed.Platform),
		htmlstd.EscapeString(embed.Source),
		htmlstd.EscapeString(embed.EmbedURL),
		htmlstd.EscapeString(videoEmbedTitle(embed.Platform)),
		sandbox,
	)
}

func videoEmbedTitle(platform string) string {
	switch platform {
	case service.VideoPlatformYouTube:
		return "YouTube 视频播放器"
	case service.VideoPlatformVimeo:
		return "Vimeo 视频播放器"
	case service.VideoPlatformBilibili:
		return "B 站视频播放器"
	default:
		return "视频播放器"
	}
}
