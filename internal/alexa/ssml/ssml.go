// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ssml escapes text for inclusion in synthesized speech markup.
package ssml

import "strings"

var (
	unescaper = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

// Escape replaces the XML special characters & ' " < > with entities.
// Entities already present are first decoded, so Escape(Escape(s)) equals
// Escape(s). Text that literally contains an entity sequence such as
// "&amp;" meant as prose is therefore rendered as its decoded character.
func Escape(text string) string {
	return escaper.Replace(unescaper.Replace(text))
}

// Speak wraps already-escaped SSML content in a speak element, unless it is
// wrapped already.
func Speak(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<speak>") && strings.HasSuffix(trimmed, "</speak>") {
		return trimmed
	}
	return "<speak>" + trimmed + "</speak>"
}
