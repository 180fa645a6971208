package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend struct {
		Monitor        bool   `yaml:"monitor"`         // 是否处理monitor类规则
		Forward        bool   `yaml:"forward"`         // 是否处理forward类规则
		IdleTimeout    uint16 `yaml:"idle_timeout"`    // 流表项空闲超时（秒）
		TableID        *uint8 `yaml:"table_id"`        // 固定流表号，可选
		PriorityOffset int32  `yaml:"priority_offset"` // 优先级偏移
		PendingTimeout int    `yaml:"pending_timeout"` // 待决操作超时窗口（秒）
		AdmissionExpr  string `yaml:"admission_expr"`  // 准入判定CEL表达式，可选
	} `yaml:"backend"`

	Rules struct {
		RuleDirectory string `yaml:"rule_directory"` // 启动时加载的规则目录
	} `yaml:"rules"`

	API struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"api"`

	Log struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		Filename   string `yaml:"filename"`
		MaxAge     int    `yaml:"max_age"`
		RotateTime int    `yaml:"rotate_time"`
	} `yaml:"log"`
}

func (c *Config) Validate() error {
	if c.Backend.PendingTimeout < 0 {
		return fmt.Errorf("pending timeout must not be negative")
	}
	if c.API.Host == "" {
		return fmt.Errorf("api host is required")
	}
	if c.API.Port == "" {
		return fmt.Errorf("api port is required")
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 未设置的待决超时回落到20秒
	if cfg.Backend.PendingTimeout == 0 {
		cfg.Backend.PendingTimeout = 20
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
