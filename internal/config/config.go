// Package config holds the modsync configuration model and loading logic.
package config

type Config struct {
	// TorrentURL is the remote location of the .torrent describing the
	// content bundle to mirror.
	TorrentURL string `mapstructure:"torrentUrl" yaml:"torrentUrl"`
	// DownloadPath is the local directory kept in sync. An empty path means
	// "not configured yet" and gates transfer registration; it is not a
	// load-time error.
	DownloadPath string `mapstructure:"downloadPath" yaml:"downloadPath"`
	// ShouldSeed keeps the transfer active after completion. When false the
	// transfer is registered paused: fetch and stop.
	ShouldSeed bool `mapstructure:"shouldSeed" yaml:"shouldSeed"`

	// Speed caps in KB/s. Nil or zero means unlimited.
	MaxUploadKB   *int64 `mapstructure:"maxUploadSpeed" yaml:"maxUploadSpeed,omitempty"`
	MaxDownloadKB *int64 `mapstructure:"maxDownloadSpeed" yaml:"maxDownloadSpeed,omitempty"`

	// Interval between remote checks, in minutes.
	Interval int `mapstructure:"interval" yaml:"interval"`

	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
}

type EngineConfig struct {
	// Type selects the backend: qbittorrent, deluge, rtorrent or watchdir.
	Type     string         `mapstructure:"type" yaml:"type"`
	QBit     QBitConfig     `mapstructure:"qbittorrent" yaml:"qbittorrent,omitempty"`
	Deluge   DelugeConfig   `mapstructure:"deluge" yaml:"deluge,omitempty"`
	RTorrent RTorrentConfig `mapstructure:"rtorrent" yaml:"rtorrent,omitempty"`
	// WatchDir is where .torrent files are dropped when type is watchdir.
	WatchDir string `mapstructure:"watchDir" yaml:"watchDir,omitempty"`
}

type QBitConfig struct {
	URL       string `mapstructure:"url" yaml:"url"`
	Username  string `mapstructure:"username" yaml:"username"`
	Password  string `mapstructure:"password" yaml:"password"`
	BasicUser string `mapstructure:"basicUser" yaml:"basicUser,omitempty"`
	BasicPass string `mapstructure:"basicPass" yaml:"basicPass,omitempty"`
}

type DelugeConfig struct {
	Hostname string `mapstructure:"hostname" yaml:"hostname"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

type RTorrentConfig struct {
	URL       string `mapstructure:"url" yaml:"url"`
	BasicUser string `mapstructure:"basicUser" yaml:"basicUser,omitempty"`
	BasicPass string `mapstructure:"basicPass" yaml:"basicPass,omitempty"`
}
