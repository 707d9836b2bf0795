package internal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the server configuration. Values come from the environment first,
// then from the YAML file named by CONFIG_FILE, then from a .env file, then from defaults.
type Config struct {
	ConfigFile      string        `env:"CONFIG_FILE"`
	Host            string        `env:"HOST,SERVER_IP,default=0.0.0.0" validate:"required"`
	Port            int           `env:"PORT,SERVER_PORT,default=12345" validate:"min=1,max=65535"`
	RootDir         string        `env:"ROOT_DIR,required=true" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=5s" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	UserStore       string        `env:"USER_STORE,default=memory" validate:"oneof=memory badger"`
	MetricsAddr     string        `env:"METRICS_ADDR"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=15s" validate:"gt=0"`
	RequiredFiles   []string      `env:"REQUIRED_FILES"`
}

// Address is the TCP address the server listens on.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads the configuration from the process environment.
// dotenvFiles are optional: missing files are ignored.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return ParseConfig(es, dotenvFiles...)
}

// ParseConfig builds a Config from es, completed by the YAML file it names and by dotenvFiles.
func ParseConfig(es env.EnvSet, dotenvFiles ...string) (Config, error) {
	var dotenv []map[string]string
	for _, file := range dotenvFiles {
		values, err := godotenv.Read(file)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("unable to read %s: %w", file, err)
		}
		dotenv = append(dotenv, values)
	}

	// CONFIG_FILE itself may come from a .env file.
	if _, ok := es["CONFIG_FILE"]; !ok {
		for _, values := range dotenv {
			if path, ok := values["CONFIG_FILE"]; ok {
				es["CONFIG_FILE"] = path
				break
			}
		}
	}

	if path := es["CONFIG_FILE"]; path != "" {
		values, err := readYAMLFile(path)
		if err != nil {
			return Config{}, err
		}
		mergeMissing(es, values)
	}
	for _, values := range dotenv {
		mergeMissing(es, values)
	}

	return unmarshalConfig(es)
}

func unmarshalConfig(es env.EnvSet) (Config, error) {
	var config Config
	if err := env.Unmarshal(es, &config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	config.RequiredFiles = lo.Compact(lo.Map(config.RequiredFiles, func(name string, _ int) string {
		return strings.TrimSpace(name)
	}))
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// mergeMissing copies values into es for keys es does not define yet.
func mergeMissing(es env.EnvSet, values map[string]string) {
	for key, value := range values {
		if _, ok := es[key]; !ok {
			es[key] = value
		}
	}
}

// readYAMLFile flattens a YAML mapping into environment style keys:
// "root_dir: data" becomes ROOT_DIR=data and lists are joined with "|".
func readYAMLFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		name := strings.ToUpper(key)
		switch v := value.(type) {
		case []any:
			values[name] = strings.Join(lo.Map(v, func(item any, _ int) string {
				return fmt.Sprint(item)
			}), "|")
		case nil:
		default:
			values[name] = fmt.Sprint(v)
		}
	}
	return values, nil
}
