package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the agent-side configuration, loaded from a YAML file with
// environment variable overrides for the fields that carry secrets or
// differ per deployment.
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Camera    CameraConfig   `yaml:"camera"`
	Capture   CaptureConfig  `yaml:"capture"`
	Provider  ProviderConfig `yaml:"provider"`
	QueuePath string         `yaml:"queue_path"`
}

type ServerConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type CameraConfig struct {
	// SnapshotURL points at an IP camera still endpoint
	SnapshotURL string `yaml:"snapshot_url"`
	// FrameDir replays images from a directory instead (dev/tests)
	FrameDir string        `yaml:"frame_dir"`
	Timeout  time.Duration `yaml:"timeout"`
}

type CaptureConfig struct {
	ScanInterval time.Duration `yaml:"scan_interval"`
	Cooldown     time.Duration `yaml:"cooldown"`
	Threshold    float64       `yaml:"threshold"`
}

type ProviderConfig struct {
	// Kind selects the embedding provider: "deepface" or "mock"
	Kind     string        `yaml:"kind"`
	URL      string        `yaml:"url"`
	Model    string        `yaml:"model"`
	Detector string        `yaml:"detector"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:     "http://localhost:3000",
			Timeout: 10 * time.Second,
		},
		Camera: CameraConfig{
			Timeout: 5 * time.Second,
		},
		Capture: CaptureConfig{
			ScanInterval: 300 * time.Millisecond,
			Cooldown:     45 * time.Second,
			Threshold:    0.5,
		},
		Provider: ProviderConfig{
			Kind:     "deepface",
			URL:      "http://localhost:5005",
			Model:    "Facenet512",
			Detector: "retinaface",
			Timeout:  30 * time.Second,
		},
		QueuePath: "classmark-queue.json",
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Server.URL == "" {
		return cfg, fmt.Errorf("server url is required")
	}

	return cfg, nil
}

// applyEnv overrides file values from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("CLASSMARK_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("CLASSMARK_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("CLASSMARK_CAMERA_URL"); v != "" {
		c.Camera.SnapshotURL = v
	}
	if v := os.Getenv("CLASSMARK_FRAME_DIR"); v != "" {
		c.Camera.FrameDir = v
	}
	if v := os.Getenv("CLASSMARK_QUEUE_PATH"); v != "" {
		c.QueuePath = v
	}
	if v := os.Getenv("CLASSMARK_PROVIDER"); v != "" {
		c.Provider.Kind = v
	}
	if v := os.Getenv("CLASSMARK_PROVIDER_URL"); v != "" {
		c.Provider.URL = v
	}
}
