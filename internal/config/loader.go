package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.OpenAI.APIKey = expandEnvVars(cfg.OpenAI.APIKey)
	cfg.Redis.URL = expandEnvVars(cfg.Redis.URL)
}

// Load reads the config file and merges it over the defaults. A missing file
// produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			expandSensitiveFields(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, cfg.validate()
}

// applyDefaults fills zero-value fields so a partial yaml file works.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = def.Redis.URL
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = def.OpenAI.Model
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = def.OpenAI.EmbeddingModel
	}
	if cfg.OpenAI.EmbeddingDim == 0 {
		cfg.OpenAI.EmbeddingDim = def.OpenAI.EmbeddingDim
	}
	if cfg.Retrieval.FetchK == 0 {
		cfg.Retrieval.FetchK = def.Retrieval.FetchK
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = def.Retrieval.MinScore
	}
	if len(cfg.Agents) == 0 {
		cfg.Agents = def.Agents
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

func (c Config) validate() error {
	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent with empty name in config")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate agent name %q in config", a.Name)
		}
		seen[a.Name] = true
		switch a.Kind {
		case "", "message", "action":
		default:
			return fmt.Errorf("agent %q has unknown kind %q", a.Name, a.Kind)
		}
	}
	return nil
}
