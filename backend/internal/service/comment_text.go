package service

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	mdhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
)

const MaxCommentLength = 1000

// TextProcessor cleans comment text on the way in and renders it to safe
// HTML on the way out.
type TextProcessor struct {
	md     goldmark.Markdown
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

func NewTextProcessor() *TextProcessor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(mdhtml.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	)

	ugc := bluemonday.UGCPolicy()
	ugc.RequireNoFollowOnLinks(true)
	ugc.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextProcessor{md: md, strict: bluemonday.StrictPolicy(), ugc: ugc}
}

// CleanInput strips all markup from user supplied text and enforces the
// length limit. The result is plain text; escaping happens in Render.
func (tp *TextProcessor) CleanInput(text string) (string, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(tp.strict.Sanitize(text)))
	if cleaned == "" {
		return "", internal_errors.BadRequest("comment text is empty")
	}
	if utf8.RuneCountInString(cleaned) > MaxCommentLength {
		return "", internal_errors.BadRequest("comment text is too long")
	}
	return cleaned, nil
}

// Render converts markdown to sanitized HTML. Rendering failures fall back
// to the escaped source text.
func (tp *TextProcessor) Render(text string) string {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		return tp.ugc.Sanitize(text)
	}
	return strings.TrimSpace(tp.ugc.Sanitize(buf.String()))
}
