package darwinfetch

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func TestLoadSettingsCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "config.json")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.ShowFullSourceInfo || s.ShowBetaInstallers {
		t.Errorf("defaults should be false, got %+v", s)
	}

	var doc map[string]any
	if err := json.Unmarshal(readFile(t, path), &doc); err != nil {
		t.Fatalf("created settings are not JSON: %v", err)
	}
	for _, key := range []string{KeyShowFullSourceInfo, KeyShowBetaInstallers} {
		v, ok := doc[key]
		if !ok || v != false {
			t.Errorf("created document %s = %v, expected explicit false", key, v)
		}
	}

	// loading again leaves the document alone
	before := readFile(t, path)
	if _, err := LoadSettings(path); err != nil {
		t.Fatalf("second LoadSettings failed: %v", err)
	}
	if string(readFile(t, path)) != string(before) {
		t.Errorf("second load rewrote the settings document")
	}
}

func TestLoadSettingsMissingKeysDefaultFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, []byte(`{"show_beta_installers": true}`))

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if !s.ShowBetaInstallers || s.ShowFullSourceInfo {
		t.Errorf("got %+v", s)
	}

	writeFile(t, path, []byte("null"))
	if s, err = LoadSettings(path); err != nil || s.ShowBetaInstallers {
		t.Errorf("null document: %+v, %v", s, err)
	}
}

func TestLoadSettingsMalformed(t *testing.T) {
	tests := []string{
		"{not json",
		`["a list"]`,
		`{"show_full_source_info": "yes"}`,
	}
	for _, doc := range tests {
		path := filepath.Join(t.TempDir(), "config.json")
		writeFile(t, path, []byte(doc))

		_, err := LoadSettings(path)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("LoadSettings(%q) error = %v, expected ParseError", doc, err)
		}
		if string(readFile(t, path)) != doc {
			t.Errorf("malformed settings document was rewritten")
		}
	}
}

func TestToggleSettingPreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, []byte(`{"show_beta_installers": true, "theme": "dark", "window": {"w": 80}}`))

	v, err := ToggleSetting(path, KeyShowFullSourceInfo)
	if err != nil {
		t.Fatalf("ToggleSetting failed: %v", err)
	}
	if !v {
		t.Errorf("toggle returned false, expected true")
	}

	var doc map[string]any
	if err := json.Unmarshal(readFile(t, path), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["theme"] != "dark" {
		t.Errorf("unknown key theme = %v, expected it preserved", doc["theme"])
	}
	if w, ok := doc["window"].(map[string]any); !ok || w["w"] != float64(80) {
		t.Errorf("nested unknown key not preserved: %v", doc["window"])
	}
	if doc[KeyShowFullSourceInfo] != true || doc[KeyShowBetaInstallers] != true {
		t.Errorf("flags after toggle = %v", doc)
	}

	// toggling twice restores the original value
	if v, err = ToggleSetting(path, KeyShowFullSourceInfo); err != nil || v {
		t.Errorf("second toggle = %v, %v; expected false", v, err)
	}
}

func TestToggleSettingUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	_, err := ToggleSetting(path, "show_everything")
	var ce *ChoiceError
	if !errors.As(err, &ce) {
		t.Errorf("expected ChoiceError, got %v", err)
	}
}

func TestSettingsGet(t *testing.T) {
	s := &Settings{ShowBetaInstallers: true}
	if v, err := s.Get(KeyShowBetaInstallers); err != nil || !v {
		t.Errorf("Get(%s) = %v, %v", KeyShowBetaInstallers, v, err)
	}
	if v, err := s.Get(KeyShowFullSourceInfo); err != nil || v {
		t.Errorf("Get(%s) = %v, %v", KeyShowFullSourceInfo, v, err)
	}
	if _, err := s.Get("bogus"); err == nil {
		t.Errorf("Get(bogus) should fail")
	}
}
