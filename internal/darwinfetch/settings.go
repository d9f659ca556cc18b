package darwinfetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gookit/color"
)

// Settings keys
const (
	KeyShowFullSourceInfo = "show_full_source_info"
	KeyShowBetaInstallers = "show_beta_installers"
)

var settingKeys = []string{KeyShowFullSourceInfo, KeyShowBetaInstallers}

// Settings is the display/filter flag document. It is loaded fresh at the
// start of every operation and saved right after every toggle; keys this
// program does not know are written back unchanged.
type Settings struct {
	ShowFullSourceInfo bool
	ShowBetaInstallers bool

	path  string
	extra map[string]json.RawMessage
}

// LoadSettings reads the settings document at path, creating it with all
// flags off when it does not exist yet.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{path: path, extra: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		debugf("Settings file not found. Creating a new one at %s\n", path)
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read settings %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.extra); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if s.extra == nil {
		// the document was the JSON literal null
		s.extra = make(map[string]json.RawMessage)
	}
	if s.ShowFullSourceInfo, err = s.boolKey(KeyShowFullSourceInfo); err != nil {
		return nil, err
	}
	if s.ShowBetaInstallers, err = s.boolKey(KeyShowBetaInstallers); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) boolKey(key string) (bool, error) {
	raw, ok := s.extra[key]
	if !ok {
		return false, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, &ParseError{Path: s.path, Err: fmt.Errorf("%s: %w", key, err)}
	}
	return v, nil
}

// Get returns the value of a known flag.
func (s *Settings) Get(key string) (bool, error) {
	switch key {
	case KeyShowFullSourceInfo:
		return s.ShowFullSourceInfo, nil
	case KeyShowBetaInstallers:
		return s.ShowBetaInstallers, nil
	}
	return false, &ChoiceError{Input: key, Reason: "unknown setting"}
}

// Save writes the whole document, known flags plus preserved keys.
func (s *Settings) Save() error {
	doc := make(map[string]any, len(s.extra)+len(settingKeys))
	for k, v := range s.extra {
		doc[k] = v
	}
	doc[KeyShowFullSourceInfo] = s.ShowFullSourceInfo
	doc[KeyShowBetaInstallers] = s.ShowBetaInstallers

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to save settings %s: %w", s.path, err)
	}
	return nil
}

// ToggleSetting loads the settings at path, flips key and persists the
// result immediately. It returns the new value.
func ToggleSetting(path, key string) (bool, error) {
	s, err := LoadSettings(path)
	if err != nil {
		return false, err
	}
	switch key {
	case KeyShowFullSourceInfo:
		s.ShowFullSourceInfo = !s.ShowFullSourceInfo
	case KeyShowBetaInstallers:
		s.ShowBetaInstallers = !s.ShowBetaInstallers
	default:
		return false, &ChoiceError{Input: key, Reason: "unknown setting"}
	}
	if err := s.Save(); err != nil {
		return false, err
	}
	return s.Get(key)
}

func onOff(v bool) string {
	if v {
		return "Enabled"
	}
	return "Disabled"
}

// handleSettingsCommand provides an interactive menu to toggle display settings
func handleSettingsCommand(path string) error {
	for {
		s, err := LoadSettings(path)
		if err != nil {
			return err
		}

		fmt.Println()
		colArrow.Print("-> ")
		colSuccess.Println("DarwinFetch Settings")
		fmt.Println("--------------------------------")
		fmt.Printf("1) Toggle Show Full Source Information: [%s]\n", color.Note.Sprint(onOff(s.ShowFullSourceInfo)))
		fmt.Printf("2) Toggle Show Beta Installers: [%s]\n", color.Note.Sprint(onOff(s.ShowBetaInstallers)))
		fmt.Println("q) Back to Main Menu")
		fmt.Println("--------------------------------")

		choice, err := readLine(nil, "Choice: ")
		if err != nil {
			return nil
		}

		var key string
		switch choice {
		case "q", "Q":
			return nil
		case "1":
			key = KeyShowFullSourceInfo
		case "2":
			key = KeyShowBetaInstallers
		default:
			colWarn.Println("Invalid choice.")
			continue
		}

		v, err := ToggleSetting(path, key)
		if err != nil {
			colError.Printf("Error: %v\n", err)
			continue
		}
		colSuccess.Printf("%s set to: %t\n", key, v)
	}
}
