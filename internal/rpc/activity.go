package rpc

import (
	"strings"

	"github.com/drawrpc/drawrpc/internal/models"
)

// MaxButtons is how many buttons the chat client displays.
const MaxButtons = 2

// Activity is the presence payload sent with SET_ACTIVITY.
type Activity struct {
	State      string      `json:"state,omitempty"`
	Details    string      `json:"details,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

// Timestamps drives the elapsed timer.
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
}

// Assets holds image URLs or asset keys and their hover texts.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Button is a labelled link.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ActivityFromDocument builds a fresh payload from a command document.
// Empty fields and sections are left out; hover texts are only sent with
// their image.
func ActivityFromDocument(doc models.CommandDocument) *Activity {
	a := &Activity{
		State:   doc.State,
		Details: doc.Details,
	}

	if doc.Start > 0 {
		a.Timestamps = &Timestamps{Start: int64(doc.Start)}
	}

	var assets Assets
	if doc.LargeImage != "" {
		assets.LargeImage = doc.LargeImage
		assets.LargeText = doc.LargeText
	}
	if doc.SmallImage != "" {
		assets.SmallImage = doc.SmallImage
		assets.SmallText = doc.SmallText
	}
	if assets != (Assets{}) {
		a.Assets = &assets
	}

	for _, b := range doc.Buttons {
		label, url := strings.TrimSpace(b.Label), strings.TrimSpace(b.URL)
		if label == "" || url == "" {
			continue
		}
		a.Buttons = append(a.Buttons, Button{Label: label, URL: url})
		if len(a.Buttons) == MaxButtons {
			break
		}
	}
	return a
}
