package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/pkg/browser"
)

var Version = "dev"

var errNoUpdateRepo = errors.New("no update repository configured")

type UpdateInfo struct {
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion"`
	UpdateAvailable bool   `json:"updateAvailable"`
	ReleaseURL      string `json:"releaseURL"`
}

type UpdateService struct {
	settings *SettingsService
	latest   *selfupdate.Release
}

func NewUpdateService(settings *SettingsService) *UpdateService {
	return &UpdateService{settings: settings}
}

func (s *UpdateService) GetCurrentVersion() string {
	return Version
}

func (s *UpdateService) isStableRelease() bool {
	v, err := semver.NewVersion(Version)
	return err == nil && v.Prerelease() == ""
}

// comparableVersion maps unparseable builds such as "dev" to 0.0.0 so any
// published release counts as newer.
func (s *UpdateService) comparableVersion() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return "0.0.0"
	}
	return v.String()
}

func (s *UpdateService) assetFilter() string {
	return fmt.Sprintf("%s-%s-%s", appDirName, runtime.GOOS, runtime.GOARCH)
}

func (s *UpdateService) repo() (string, error) {
	if s.settings == nil {
		return "", errNoUpdateRepo
	}
	repo := s.settings.GetSettings().UpdateRepo
	if repo == "" {
		return "", errNoUpdateRepo
	}
	return repo, nil
}

func (s *UpdateService) newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create github source: %w", err)
	}

	cfg := selfupdate.Config{
		Source:  source,
		Filters: []string{s.assetFilter()},
	}
	if !s.isStableRelease() {
		cfg.Prerelease = true
	}

	updater, err := selfupdate.NewUpdater(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}
	return updater, nil
}

func (s *UpdateService) CheckForUpdate() (*UpdateInfo, error) {
	repo, err := s.repo()
	if err != nil {
		return nil, err
	}

	updater, err := s.newUpdater()
	if err != nil {
		return nil, err
	}

	latest, found, err := updater.DetectLatest(context.Background(), selfupdate.ParseSlug(repo))
	if err != nil {
		return nil, fmt.Errorf("failed to detect latest version: %w", err)
	}

	info := &UpdateInfo{CurrentVersion: Version}
	if found {
		info.LatestVersion = latest.Version()
		info.ReleaseURL = latest.URL
		if latest.GreaterThan(s.comparableVersion()) {
			info.UpdateAvailable = true
			s.latest = latest
		}
	}

	slog.Info("update check complete", "current", Version, "latest", info.LatestVersion, "available", info.UpdateAvailable)
	return info, nil
}

func (s *UpdateService) ApplyUpdate() error {
	if s.latest == nil {
		return fmt.Errorf("no update available, run CheckForUpdate first")
	}

	updater, err := s.newUpdater()
	if err != nil {
		return err
	}

	if err := updater.UpdateTo(context.Background(), s.latest, ""); err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}

	slog.Info("update applied", "version", s.latest.Version())
	return nil
}

func (s *UpdateService) OpenReleasePage() error {
	if s.latest == nil || s.latest.URL == "" {
		return fmt.Errorf("no release page known, run CheckForUpdate first")
	}
	return browser.OpenURL(s.latest.URL)
}
