package web

import (
	"errors"
	"fmt"
	"net"
	"os"
)

const DefaultListenAddr = ":8080"

// ServerConfig contains settings for running the HTTP server.
type ServerConfig struct {
	Listen string `koanf:"listen" yaml:"listen"`
	// Dev enables permissive CORS for a preview page served from elsewhere.
	Dev bool `koanf:"dev" yaml:"dev"`
	// StaticDir, when set, replaces the embedded preview page at "/".
	StaticDir string `koanf:"static_dir" yaml:"static_dir,omitempty"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{Listen: DefaultListenAddr}
}

func (c ServerConfig) Validate() error {
	if c.Listen == "" {
		return errors.New("server.listen must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("server.listen %q: %w", c.Listen, err)
	}
	if c.StaticDir != "" {
		st, err := os.Stat(c.StaticDir)
		if err != nil {
			return fmt.Errorf("server.static_dir: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("server.static_dir %q is not a directory", c.StaticDir)
		}
	}
	return nil
}
