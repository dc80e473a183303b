package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
)

const appDirName = "filepath-bookmark"

type Settings struct {
	Port               int    `json:"port"`
	ShowDelayMs        int    `json:"showDelayMs"`
	Margin             int    `json:"margin"`
	Display            string `json:"display"`
	HideOnDialogClosed bool   `json:"hideOnDialogClosed"`
	AckFrames          bool   `json:"ackFrames"`
	LogLevel           string `json:"logLevel"`
	WindowWidth        int    `json:"windowWidth"`
	WindowHeight       int    `json:"windowHeight"`
	JournalLimit       int    `json:"journalLimit"`
	UpdateRepo         string `json:"updateRepo"`
}

func defaultSettings() Settings {
	return Settings{
		Port:         defaultPort,
		ShowDelayMs:  int(defaultShowDelay / time.Millisecond),
		Margin:       defaultMargin,
		LogLevel:     "info",
		WindowWidth:  320,
		WindowHeight: 520,
		JournalLimit: 500,
	}
}

// normalized replaces out-of-range values with their defaults.
func (s Settings) normalized() Settings {
	def := defaultSettings()
	if s.Port <= 0 || s.Port > 65535 {
		s.Port = def.Port
	}
	if s.ShowDelayMs <= 0 {
		s.ShowDelayMs = def.ShowDelayMs
	}
	if s.Margin < 0 {
		s.Margin = def.Margin
	}
	if s.WindowWidth <= 0 {
		s.WindowWidth = def.WindowWidth
	}
	if s.WindowHeight <= 0 {
		s.WindowHeight = def.WindowHeight
	}
	if s.JournalLimit <= 0 {
		s.JournalLimit = def.JournalLimit
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		s.LogLevel = def.LogLevel
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	return s
}

func (s Settings) Endpoint() string {
	return loopbackEndpoint(s.Port)
}

func (s Settings) ShowDelay() time.Duration {
	return time.Duration(s.ShowDelayMs) * time.Millisecond
}

func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type SettingsService struct {
	mu       sync.RWMutex
	settings Settings
	filePath string
}

func NewSettingsService() *SettingsService {
	fp, err := xdg.ConfigFile(filepath.Join(appDirName, "settings.json"))
	if err != nil {
		configDir, _ := os.UserConfigDir()
		fp = filepath.Join(configDir, appDirName, "settings.json")
	}

	s := &SettingsService{
		filePath: fp,
		settings: defaultSettings(),
	}
	s.load()
	return s
}

func (s *SettingsService) GetSettings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings persists settings. Port and delay changes apply on the next start.
func (s *SettingsService) UpdateSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.normalized()
	return s.save()
}

func (s *SettingsService) load() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &s.settings); err != nil {
		slog.Warn("ignoring unreadable settings file", "path", s.filePath, "error", err)
	}
	s.settings = s.settings.normalized()
}

func (s *SettingsService) save() error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	return os.WriteFile(s.filePath, data, 0o644)
}
