package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/betbot/surgebot/internal/exchange/paper"
	"github.com/betbot/surgebot/internal/strategies/surge"
	"github.com/betbot/surgebot/pkg/logger"
)

// PersistenceConfig 快照持久化后端
type PersistenceConfig struct {
	// Backend 可选 file（JSON 文件）或 badger（嵌入式 KV）
	Backend string `yaml:"backend" json:"backend"`
	Dir     string `yaml:"dir" json:"dir"`
}

// Validate 校验并填默认值
func (p *PersistenceConfig) Validate() error {
	if p.Backend == "" {
		p.Backend = "file"
	}
	switch strings.ToLower(p.Backend) {
	case "file", "badger":
	default:
		return fmt.Errorf("不支持的持久化后端: %s（支持 file/badger）", p.Backend)
	}
	if p.Dir == "" {
		p.Dir = "data"
	}
	return nil
}

// Config 应用配置
type Config struct {
	Log         logger.Config     `yaml:"log" json:"log"`
	Persistence PersistenceConfig `yaml:"persistence" json:"persistence"`
	Surge       surge.Config      `yaml:"surge" json:"surge"`
	Paper       paper.Config      `yaml:"paper" json:"paper"`
}

// Load 从 YAML 文件加载配置。未知字段直接报错，拼错的键不该被静默吞掉。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(b)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验整棵配置树
func (c *Config) Validate() error {
	if err := c.Persistence.Validate(); err != nil {
		return err
	}
	if err := c.Surge.Validate(); err != nil {
		return err
	}
	return nil
}
