// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package response

import "encoding/json"

// Directive types emitted by the core.
const (
	DirectiveElicitSlot     = "Dialog.ElicitSlot"
	DirectiveRenderDocument = "Alexa.Presentation.APL.RenderDocument"
	DirectiveAudioPlay      = "AudioPlayer.Play"
	DirectiveAudioStop      = "AudioPlayer.Stop"
)

// Play behaviors for AudioPlayer.Play.
const (
	PlayBehaviorReplaceAll = "REPLACE_ALL"
	PlayBehaviorEnqueue    = "ENQUEUE"
)

// Directive is one platform instruction carried by a response. Only the
// fields relevant to Type are set.
type Directive struct {
	Type string `json:"type"`

	SlotToElicit string `json:"slotToElicit,omitempty"`

	Token       string          `json:"token,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
	Datasources json.RawMessage `json:"datasources,omitempty"`

	PlayBehavior string     `json:"playBehavior,omitempty"`
	AudioItem    *AudioItem `json:"audioItem,omitempty"`
}

// AudioItem is the payload of an AudioPlayer.Play directive.
type AudioItem struct {
	Stream   AudioStream    `json:"stream"`
	Metadata *AudioMetadata `json:"metadata,omitempty"`
}

// AudioStream identifies the audio to play.
type AudioStream struct {
	URL                  string `json:"url"`
	Token                string `json:"token"`
	OffsetInMilliseconds int64  `json:"offsetInMilliseconds"`
}

// AudioMetadata is displayed on screen devices while audio plays.
type AudioMetadata struct {
	Title           string      `json:"title,omitempty"`
	Subtitle        string      `json:"subtitle,omitempty"`
	Art             *ImageGroup `json:"art,omitempty"`
	BackgroundImage *ImageGroup `json:"backgroundImage,omitempty"`
}

// ImageGroup is a set of image sources.
type ImageGroup struct {
	Sources []ImageSource `json:"sources"`
}

// ImageSource is a single image URL.
type ImageSource struct {
	URL string `json:"url"`
}

func imageGroup(url string) *ImageGroup {
	if url == "" {
		return nil
	}
	return &ImageGroup{Sources: []ImageSource{{URL: url}}}
}
