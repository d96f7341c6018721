// Package config loads the operator-facing settings the core treats as an
// external collaborator's contract: online-mode toggle, player cap, motd,
// and an optional favicon. It is read once at startup and shared
// read-only from then on.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the server looks for its config file.
const DefaultPath = "server.yaml"

const defaultListenAddr = "127.0.0.1:25565"

// Snapshot is the immutable config value every Connection and the Server
// actor are handed a copy of at construction time.
type Snapshot struct {
	ListenAddr  string `yaml:"listen_addr"`
	OnlineMode  bool   `yaml:"online_mode"`
	MaxPlayers  int    `yaml:"max_players"`
	Motd        string `yaml:"motd"`
	FaviconPath string `yaml:"favicon_path"`

	// FaviconB64 is the rendered data URL the status JSON carries. It is
	// filled from FaviconPath at startup via LoadFavicon, never from the
	// file itself.
	FaviconB64 string `yaml:"-"`
}

func defaults() Snapshot {
	return Snapshot{
		ListenAddr: defaultListenAddr,
		OnlineMode: true,
		MaxPlayers: 20,
		Motd:       "Just another impostor Minecraft server",
	}
}

// ReadFromDefaultPath loads config from DefaultPath, writing a default
// file first if none exists yet.
func ReadFromDefaultPath() (Snapshot, error) {
	return ReadFrom(DefaultPath)
}

// ReadFrom loads config from path. If path does not exist, a default
// config is written there (annotated with a generation timestamp) before
// being returned, so a first run leaves the operator an editable file.
func ReadFrom(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		snap := defaults()
		if writeErr := writeDefault(path, snap); writeErr != nil {
			return Snapshot{}, fmt.Errorf("config: writing default %s: %w", path, writeErr)
		}
		return snap, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	snap := defaults()
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	favicon, err := LoadFavicon(snap.FaviconPath)
	if err != nil {
		return Snapshot{}, err
	}
	snap.FaviconB64 = favicon
	return snap, nil
}

// LoadFavicon reads the PNG at path and renders it as the
// "data:image/png;base64,..." string the status JSON's favicon field
// carries. An empty path means no favicon is configured and reports
// absence, not an error.
func LoadFavicon(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: reading favicon %s: %w", path, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func writeDefault(path string, snap Snapshot) error {
	header := fmt.Sprintf("# generated %s\n", time.Now().UTC().Format(time.RFC3339))
	body, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(header), body...), 0o644)
}
