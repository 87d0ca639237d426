package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		Secret string `yaml:"secret"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// PromptTTL bounds how long a cached open prompt may be served.
		PromptTTL string `yaml:"promptTtl"`
	} `yaml:"redis"`
	Postgres struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"postgres"`
	Submission struct {
		DailyCap            int     `yaml:"dailyCap"`
		SimilarityThreshold float64 `yaml:"similarityThreshold"`
		SubmissionPoints    int     `yaml:"submissionPoints"`
		ValidationPoints    int     `yaml:"validationPoints"`
		RejectClosedPrompts bool    `yaml:"rejectClosedPrompts"`
		SeedTopic           string  `yaml:"seedTopic"`
		SeedPromptText      string  `yaml:"seedPromptText"`
	} `yaml:"submission"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
