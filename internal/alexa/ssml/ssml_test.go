// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ssml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"all", `& ' " < >`, "&amp; &apos; &quot; &lt; &gt;"},
		{"already escaped", "Tom &amp; Jerry", "Tom &amp; Jerry"},
		{"mixed", "a &lt; b & c > d", "a &lt; b &amp; c &gt; d"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestEscape_Idempotent(t *testing.T) {
	inputs := []string{
		`&`, `'`, `"`, `<`, `>`,
		`Rock & Roll`,
		`<<>>&&''""`,
		`She said "it's 5 < 6 & 7 > 3"`,
		`plain ascii text 123`,
	}
	for _, in := range inputs {
		once := Escape(in)
		assert.Equal(t, once, Escape(once), "input %q", in)
	}
}

func TestSpeak(t *testing.T) {
	assert.Equal(t, "<speak>Hello</speak>", Speak("Hello"))
	assert.Equal(t, "<speak>Hello</speak>", Speak("  <speak>Hello</speak>\n"))
	assert.Equal(t, "<speak></speak>", Speak(""))
}
