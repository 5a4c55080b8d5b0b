package rpc

import (
	"encoding/json"
	"testing"

	"github.com/drawrpc/drawrpc/internal/models"
)

func TestActivityFromDocumentOmitsEmptyFields(t *testing.T) {
	doc := models.CommandDocument{
		Command:    models.CommandUpdate,
		LargeImage: "http://x/a.png",
		Details:    "Coding",
		State:      "",
		Start:      0,
	}

	data, err := json.Marshal(ActivityFromDocument(doc))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if _, ok := got["state"]; ok {
		t.Errorf("payload has state key: %s", data)
	}
	if _, ok := got["timestamps"]; ok {
		t.Errorf("payload has timestamps key: %s", data)
	}
	if _, ok := got["buttons"]; ok {
		t.Errorf("payload has buttons key: %s", data)
	}
	if string(got["details"]) != `"Coding"` {
		t.Errorf("details = %s, want \"Coding\"", got["details"])
	}

	var assets map[string]string
	if err := json.Unmarshal(got["assets"], &assets); err != nil {
		t.Fatalf("assets: %v", err)
	}
	if assets["large_image"] != "http://x/a.png" {
		t.Errorf("assets.large_image = %q", assets["large_image"])
	}
	if _, ok := assets["small_image"]; ok {
		t.Errorf("assets has small_image: %v", assets)
	}
}

func TestActivityFromDocument(t *testing.T) {
	tests := []struct {
		name  string
		doc   models.CommandDocument
		check func(t *testing.T, a *Activity)
	}{
		{
			name: "start timestamp",
			doc:  models.CommandDocument{Start: 1700000000},
			check: func(t *testing.T, a *Activity) {
				if a.Timestamps == nil || a.Timestamps.Start != 1700000000 {
					t.Errorf("Timestamps = %+v", a.Timestamps)
				}
			},
		},
		{
			name: "hover text without image dropped",
			doc:  models.CommandDocument{LargeText: "orphan", SmallText: "orphan"},
			check: func(t *testing.T, a *Activity) {
				if a.Assets != nil {
					t.Errorf("Assets = %+v, want nil", a.Assets)
				}
			},
		},
		{
			name: "small image with text",
			doc:  models.CommandDocument{SmallImage: "icon", SmallText: "hi"},
			check: func(t *testing.T, a *Activity) {
				if a.Assets == nil || a.Assets.SmallImage != "icon" || a.Assets.SmallText != "hi" {
					t.Errorf("Assets = %+v", a.Assets)
				}
			},
		},
		{
			name: "buttons trimmed and capped",
			doc: models.CommandDocument{Buttons: []models.Button{
				{Label: "", URL: "https://a"},
				{Label: " One ", URL: " https://one "},
				{Label: "Two", URL: "https://two"},
				{Label: "Three", URL: "https://three"},
			}},
			check: func(t *testing.T, a *Activity) {
				want := []Button{{Label: "One", URL: "https://one"}, {Label: "Two", URL: "https://two"}}
				if len(a.Buttons) != len(want) {
					t.Fatalf("Buttons = %+v, want %+v", a.Buttons, want)
				}
				for i := range want {
					if a.Buttons[i] != want[i] {
						t.Errorf("Buttons[%d] = %+v, want %+v", i, a.Buttons[i], want[i])
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ActivityFromDocument(tt.doc))
		})
	}
}
