package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const nativeHostName = "com.filepathbookmark.host"

// NativeHostManifest is the browser-side registration of this binary as a
// native-messaging host.
type NativeHostManifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	Type           string   `json:"type"`
	AllowedOrigins []string `json:"allowed_origins"`
}

func buildNativeManifest(exePath string, origins []string) (NativeHostManifest, error) {
	if !filepath.IsAbs(exePath) {
		return NativeHostManifest{}, fmt.Errorf("host path must be absolute: %q", exePath)
	}
	if len(origins) == 0 {
		return NativeHostManifest{}, errors.New("at least one extension origin is required")
	}

	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		o, err := normalizeOrigin(origin)
		if err != nil {
			return NativeHostManifest{}, err
		}
		allowed = append(allowed, o)
	}

	return NativeHostManifest{
		Name:           nativeHostName,
		Description:    "File Path Bookmark file dialog companion",
		Path:           exePath,
		Type:           "stdio",
		AllowedOrigins: allowed,
	}, nil
}

// normalizeOrigin accepts a bare extension ID or a chrome-extension:// origin.
func normalizeOrigin(origin string) (string, error) {
	id := strings.TrimSuffix(strings.TrimPrefix(origin, "chrome-extension://"), "/")
	if id == "" || strings.ContainsAny(id, "/:") {
		return "", fmt.Errorf("invalid extension origin: %q", origin)
	}
	return "chrome-extension://" + id + "/", nil
}
