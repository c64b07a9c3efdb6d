package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSettings_NestsDisplayOptions(t *testing.T) {
	data, err := json.Marshal(DefaultSettings())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	body := string(data)
	if !strings.Contains(body, `"display_options":{`) {
		t.Errorf("display preferences not nested: %s", body)
	}

	var decoded struct {
		DisplayOptions map[string]interface{} `json:"display_options"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"show_chart", "default_view", "theme"} {
		if _, ok := decoded.DisplayOptions[key]; !ok {
			t.Errorf("display_options missing %q: %s", key, body)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", s.Currency)
	}
	if s.RefreshIntervalMin != 5 {
		t.Errorf("RefreshIntervalMin = %d, want 5", s.RefreshIntervalMin)
	}
	if !s.DisplayOptions.ShowChart {
		t.Error("ShowChart should default to true")
	}
}
