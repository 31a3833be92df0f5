// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package response

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format is the render target requested from a template.
type Format string

// Render formats.
const (
	FormatSSML Format = "ssml"
	FormatAPL  Format = "apl"
	FormatCard Format = "card"
	FormatText Format = "text"
)

const (
	templateRoot      = "alexa"
	handlersDir       = "intent_handlers"
	elicitationsDir   = "elicitations"
	defaultTemplate   = "default"
	templateExtension = ".tmpl"

	// namespaceDepth is the number of leading logical name segments that
	// identify the handler namespace rather than the handler itself.
	namespaceDepth = 2
)

// Extension returns the path extension tag for f. APL documents are JSON.
func (f Format) Extension() string {
	if f == FormatAPL {
		return "json"
	}
	return string(f)
}

// PartialPath resolves the template for format. The first of these wins: an
// explicit filename, a template forced with With, the elicitation template of
// the first elicited slot unless it was marked skip-render, the default template.
func (r *Response) PartialPath(format Format, filename string) string {
	if filename == "" {
		filename = r.forcedTemplate
	}
	if filename == "" {
		filename = r.elicitationTemplate()
	}
	if filename == "" {
		filename = defaultTemplate
	}
	return path.Join(r.PartialsDirectory(), filename+"."+format.Extension()+templateExtension)
}

func (r *Response) elicitationTemplate() string {
	elicits := r.ElicitDirectives()
	if len(elicits) == 0 {
		return ""
	}
	slot := elicits[0].SlotToElicit
	if slot == "" {
		return ""
	}
	if _, skip := r.skipElicitRender[slot]; skip {
		return ""
	}
	return path.Join(elicitationsDir, Underscore(slot))
}

// PartialsDirectory is the template directory of the handler, for example
// "alexa/en-us/intent_handlers/music/play_song".
func (r *Response) PartialsDirectory() string {
	var locale, name string
	if r.intent != nil {
		locale = r.intent.Locale()
		name = r.intent.LogicalName()
	}
	return path.Join(templateRoot, lower(locale), handlersDir, HandlerDirectory(name))
}

// HandlerDirectory maps a logical handler name to its template directory:
// the two outermost segments are dropped and every remaining segment is
// converted to snake case.
func HandlerDirectory(logicalName string) string {
	segments := strings.FieldsFunc(logicalName, func(r rune) bool { return r == '.' || r == ':' || r == '/' })
	if len(segments) <= namespaceDepth {
		return ""
	}
	segments = segments[namespaceDepth:]
	for i, s := range segments {
		segments[i] = Underscore(s)
	}
	return path.Join(segments...)
}

// Underscore converts a CamelCase identifier to snake_case. Acronyms stay
// together: "HTTPRequest" becomes "http_request". Dashes become underscores.
func Underscore(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if r == '-' || r == ' ' {
			b.WriteRune('_')
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(r)
	}
	return lower(b.String())
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
