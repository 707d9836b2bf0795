package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// FILESERVER_ADDR targets a running server; when empty the suite starts one in-process
	ServerAddr string `envconfig:"FILESERVER_ADDR"`
	// FILESERVER_ROOT_DIR is the root of the targeted server, used to compare fetched files
	RootDir string `envconfig:"FILESERVER_ROOT_DIR"`
	// E2E_USER_STORE selects the credential store of the in-process server
	UserStore string `envconfig:"E2E_USER_STORE" default:"badger"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
