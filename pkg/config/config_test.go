package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// 测试配置加载和默认值回落
func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
backend:
  monitor: false
  forward: true
  idle_timeout: 60
  table_id: 4
  priority_offset: 100
  admission_expr: "rule.priority < 1000"
rules:
  rule_directory: ./rules
api:
  host: 127.0.0.1
  port: "8080"
log:
  level: INFO
  dir: ./logs
  filename: backend.log
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.Backend.Monitor)
	assert.True(t, cfg.Backend.Forward)
	assert.Equal(t, uint16(60), cfg.Backend.IdleTimeout)
	require.NotNil(t, cfg.Backend.TableID)
	assert.Equal(t, uint8(4), *cfg.Backend.TableID)
	assert.Equal(t, int32(100), cfg.Backend.PriorityOffset)
	assert.Equal(t, "rule.priority < 1000", cfg.Backend.AdmissionExpr)
	// 未设置的待决超时回落到20秒
	assert.Equal(t, 20, cfg.Backend.PendingTimeout)
	assert.Equal(t, "./rules", cfg.Rules.RuleDirectory)
}

// 测试可选项缺省时保持零值
func TestLoadConfigOptionalFields(t *testing.T) {
	path := writeConfig(t, `
backend:
  forward: true
  pending_timeout: 5
api:
  host: 0.0.0.0
  port: "9000"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Backend.TableID)
	assert.Equal(t, 5, cfg.Backend.PendingTimeout)
	assert.Empty(t, cfg.Backend.AdmissionExpr)
}

// 测试配置校验
func TestValidate(t *testing.T) {
	// 缺少api host
	path := writeConfig(t, `
backend:
  forward: true
api:
  port: "8080"
`)
	_, err := LoadConfig(path)
	assert.Error(t, err)

	// 负的待决超时
	cfg := &Config{}
	cfg.Backend.PendingTimeout = -1
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = "8080"
	assert.Error(t, cfg.Validate())
}

// 测试文件不存在和YAML格式错误
func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("does-not-exist.yaml")
	assert.Error(t, err)

	path := writeConfig(t, "backend: [not a mapping")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
