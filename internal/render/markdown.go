// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownConverter = goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	markdownPolicy = bluemonday.UGCPolicy()
)

// Markdown converts editor-entered text to sanitized HTML. Content authors
// can use basic formatting in the long description fields; anything outside
// the UGC policy is stripped.
func Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(source), &buf); err != nil {
		// Fall back to the escaped source text
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(markdownPolicy.SanitizeBytes(buf.Bytes()))
}
