package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Find locates the config file. Explicit path wins, then the current
// directory, then ~/.config/modsync/config.yaml.
func Find(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Error().Err(err).Msg("could not determine home directory")
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	configDir := filepath.Join(home, ".config", "modsync")
	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	log.Error().Str("configDir", configDir).Msg("no config file found")
	return "", fmt.Errorf("no config file found in current directory or %s", configDir)
}

// Load reads and unmarshals the config file at path.
func Load(path string) (*Config, error) {
	log.Debug().Str("path", path).Msg("loading config file")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MODSYNC")
	v.AutomaticEnv()

	v.SetDefault("interval", 60)
	v.SetDefault("shouldSeed", true)
	v.SetDefault("engine.type", "qbittorrent")

	if err := v.ReadInConfig(); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to read config file")
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to parse config file")
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Validate checks the fields needed before any sync can run. An empty
// download path is deliberately not an error here; the sync core reports it
// as a status instead.
func (c *Config) Validate() error {
	if c.TorrentURL == "" {
		return fmt.Errorf("torrentUrl is not set")
	}
	switch c.Engine.Type {
	case "qbittorrent", "deluge", "rtorrent", "watchdir":
	default:
		return fmt.Errorf("unknown engine type %q", c.Engine.Type)
	}
	if c.Engine.Type == "watchdir" && c.Engine.WatchDir == "" {
		return fmt.Errorf("engine.watchDir is not set")
	}
	return nil
}

const defaultConfigHeader = `# ModSync Configuration
#
# Point torrentUrl at the remote .torrent describing the mod bundle and
# downloadPath at the local directory to keep in sync.
#
# Engine types:
#   qbittorrent - qBittorrent WebUI (url, username, password)
#   deluge      - Deluge daemon (hostname, username, password)
#   rtorrent    - ruTorrent httprpc endpoint (url)
#   watchdir    - drop .torrent files into a watched directory
#
# Speed caps are in KB/s; omit or set 0 for unlimited.

`

// WriteDefault creates a commented starter config at path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		log.Error().Str("path", path).Msg("config file already exists")
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create config directory: %w", err)
		}
	}

	down := int64(0)
	cfg := Config{
		TorrentURL:    "https://example.com/mods.torrent",
		DownloadPath:  "",
		ShouldSeed:    true,
		MaxDownloadKB: &down,
		Interval:      60,
		Engine: EngineConfig{
			Type: "qbittorrent",
			QBit: QBitConfig{
				URL:      "http://localhost:8080",
				Username: "admin",
				Password: "adminadmin",
			},
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(defaultConfigHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Info().Str("path", path).Msg("created new config file")
	return nil
}
