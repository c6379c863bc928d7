// Package config provides YAML-based server configuration loading for the
// merge-duel server.
package config

// ServerConfig is the top-level configuration.
type ServerConfig struct {
	SSH    SSHConfig  `yaml:"ssh"`
	WS     WSConfig   `yaml:"ws"`
	DBPath string     `yaml:"db_path"`
	Game   GameConfig `yaml:"game"`
}

// SSHConfig configures the SSH front door.
type SSHConfig struct {
	Address        string `yaml:"address"`
	HostKeyPath    string `yaml:"host_key_path"` // auto-generated when empty
	IdleTimeoutMin int    `yaml:"idle_timeout_min"`
}

// WSConfig configures the WebSocket gateway.
type WSConfig struct {
	Address string `yaml:"address"`
}

// GameConfig holds match-engine tuning.
type GameConfig struct {
	// ReconnectGraceSecs is how long a disconnected player's slot is held.
	ReconnectGraceSecs int `yaml:"reconnect_grace_secs"`

	// Effects is the obstacle-injection threshold table.
	Effects EffectConfig `yaml:"effects"`
}

// EffectConfig mirrors effect.Thresholds in YAML form.
type EffectConfig struct {
	XAt    int `yaml:"x_at"`
	HardAt int `yaml:"hard_at"`
}
