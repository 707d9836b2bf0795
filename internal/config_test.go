package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	req := require.New(t)

	config, err := ParseConfig(env.EnvSet{"ROOT_DIR": "/srv/data"})

	req.NoError(err)
	req.Equal("0.0.0.0", config.Host)
	req.Equal(12345, config.Port)
	req.Equal("/srv/data", config.RootDir)
	req.Equal("INFO", config.LogLevel)
	req.Equal(5*time.Second, config.RequestTimeout)
	req.Equal(10*time.Second, config.WriteTimeout)
	req.Equal(200*time.Millisecond, config.RestartInterval)
	req.Equal("memory", config.UserStore)
	req.Empty(config.MetricsAddr)
	req.Empty(config.RequiredFiles)
	req.Equal("0.0.0.0:12345", config.Address())
}

func TestParseConfig_MissingRootDir(t *testing.T) {
	req := require.New(t)

	_, err := ParseConfig(env.EnvSet{})

	req.Error(err)
}

func TestParseConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		es   env.EnvSet
	}{
		{"unknown user store", env.EnvSet{"ROOT_DIR": "data", "USER_STORE": "redis"}},
		{"port out of range", env.EnvSet{"ROOT_DIR": "data", "PORT": "70000"}},
		{"unknown log level", env.EnvSet{"ROOT_DIR": "data", "LOG_LEVEL": "VERBOSE"}},
		{"zero timeout", env.EnvSet{"ROOT_DIR": "data", "REQUEST_TIMEOUT": "0s"}},
		{"unparsable duration", env.EnvSet{"ROOT_DIR": "data", "WRITE_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.es)
			require.Error(t, err)
		})
	}
}

func TestParseConfig_RequiredFiles(t *testing.T) {
	req := require.New(t)

	config, err := ParseConfig(env.EnvSet{"ROOT_DIR": "data", "REQUIRED_FILES": "tiny.txt| hamlet.txt||"})

	req.NoError(err)
	req.Equal([]string{"tiny.txt", "hamlet.txt"}, config.RequiredFiles)
}

func TestParseConfig_YAMLFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	req.NoError(os.WriteFile(path, []byte(`
server_ip: 127.0.0.1
server_port: 23456
root_dir: /srv/yaml
user_store: badger
required_files:
  - tiny.txt
  - hamlet.txt
`), 0o644))

	// Given an environment overriding the port
	config, err := ParseConfig(env.EnvSet{"CONFIG_FILE": path, "PORT": "34567"})

	req.NoError(err)
	req.Equal("127.0.0.1", config.Host)
	req.Equal(34567, config.Port)
	req.Equal("/srv/yaml", config.RootDir)
	req.Equal("badger", config.UserStore)
	req.Equal([]string{"tiny.txt", "hamlet.txt"}, config.RequiredFiles)
}

func TestParseConfig_DotEnv(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	req.NoError(os.WriteFile(yamlPath, []byte("root_dir: /srv/yaml\nlog_level: WARN\n"), 0o644))
	dotenv := filepath.Join(dir, ".env")
	req.NoError(os.WriteFile(dotenv, []byte("CONFIG_FILE="+yamlPath+"\nLOG_LEVEL=DEBUG\nREQUEST_TIMEOUT=2s\n"), 0o644))

	config, err := ParseConfig(env.EnvSet{}, dotenv, filepath.Join(dir, "missing.env"))

	req.NoError(err)
	req.Equal("/srv/yaml", config.RootDir)
	// The YAML file wins over the .env file
	req.Equal("WARN", config.LogLevel)
	req.Equal(2*time.Second, config.RequestTimeout)
}

func TestParseConfig_BadYAMLFile(t *testing.T) {
	req := require.New(t)

	_, err := ParseConfig(env.EnvSet{"CONFIG_FILE": filepath.Join(t.TempDir(), "missing.yaml")})

	req.Error(err)
}
