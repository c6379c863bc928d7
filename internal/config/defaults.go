package config

import (
	_ "embed"
)

//go:embed defaults/server.yaml
var defaultServerYAML []byte

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		SSH: SSHConfig{
			Address:        ":23235",
			IdleTimeoutMin: 30,
		},
		WS: WSConfig{
			Address: ":4000",
		},
		DBPath: "~/.mergeduel/matches.db",
		Game: GameConfig{
			ReconnectGraceSecs: 30,
			Effects: EffectConfig{
				XAt:    128,
				HardAt: 512,
			},
		},
	}
}
