package service

import (
	"html"
	"strings"

	"github.com/keepmind9/unibot/internal/messenger"
)

// Post is a piece of content published to several bots
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Summary string `json:"summary,omitempty"`
	Link    string `json:"link,omitempty"`
}

// PublishOptions control how a Post is rendered
type PublishOptions struct {
	Format      messenger.TextFormat `json:"format,omitempty"`
	UseSummary  bool                 `json:"use_summary,omitempty"`
	IncludeLink bool                 `json:"include_link,omitempty"`
}

// TextFormatter escapes text for one platform's markup. Every messenger.Adapter
// satisfies it.
type TextFormatter interface {
	Platform() messenger.Platform
	FormatText(text string, format messenger.TextFormat) string
}

// BuildPostMessage renders post without platform specific escaping. The title is
// bold in markdown and html. UseSummary falls back to the content when the
// summary is empty.
func BuildPostMessage(post Post, opts PublishOptions) messenger.Message {
	return RenderPost(post, opts, nil)
}

// RenderPost renders post for the platform behind f. Title, body and link are
// escaped with f, and a markdown title uses the platform's bold markup.
func RenderPost(post Post, opts PublishOptions, f TextFormatter) messenger.Message {
	format := opts.Format
	if format == "" {
		format = messenger.FormatMarkdown
	}

	escape := func(text string) string {
		switch {
		case format == messenger.FormatHTML:
			return html.EscapeString(text)
		case f != nil:
			return f.FormatText(text, format)
		}
		return text
	}

	body := post.Content
	if opts.UseSummary && strings.TrimSpace(post.Summary) != "" {
		body = post.Summary
	}

	var parts []string
	if title := strings.TrimSpace(post.Title); title != "" {
		switch format {
		case messenger.FormatMarkdown:
			marker := markdownBold(f)
			parts = append(parts, marker+escape(title)+marker)
		case messenger.FormatHTML:
			parts = append(parts, "<b>"+escape(title)+"</b>")
		default:
			parts = append(parts, title)
		}
	}

	if body = strings.TrimSpace(body); body != "" {
		parts = append(parts, escape(body))
	}

	if opts.IncludeLink && post.Link != "" {
		link := escape(post.Link)
		if format == messenger.FormatHTML {
			link = `<a href="` + link + `">` + link + `</a>`
		}
		parts = append(parts, link)
	}

	return messenger.Message{
		Text:   strings.Join(parts, "\n\n"),
		Format: format,
	}
}

// markdownBold is "*" in Telegram MarkdownV2 and "**" on MAX and Discord,
// where a single asterisk is italic.
func markdownBold(f TextFormatter) string {
	if f == nil || f.Platform() == messenger.PlatformTelegram {
		return "*"
	}
	return "**"
}
