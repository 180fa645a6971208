package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// RuleLoader 负责加载和管理规则配置
// API处理协程会并发读写，所有访问都要持锁
type RuleLoader struct {
	mu    sync.RWMutex
	specs map[uint32]*RuleSpec // 使用map存储规则配置，key为规则ID
}

// NewRuleLoader 创建一个新的规则加载器
func NewRuleLoader() *RuleLoader {
	return &RuleLoader{
		specs: make(map[uint32]*RuleSpec),
	}
}

// LoadRuleFromFile 从文件加载规则
func (rl *RuleLoader) LoadRuleFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("读取规则文件失败: %w", err)
	}

	var spec RuleSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("解析YAML失败: %w", err)
	}

	// 转换一遍确保配置有效，加载即校验
	if _, err := spec.ToRule(); err != nil {
		return fmt.Errorf("规则配置无效: %w", err)
	}

	rl.AddRule(&spec)
	return nil
}

// LoadRulesFromDirectory 从目录加载所有规则
func (rl *RuleLoader) LoadRulesFromDirectory(dirPath string) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("读取目录失败: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if filepath.Ext(file.Name()) == ".yaml" || filepath.Ext(file.Name()) == ".yml" {
			fullPath := filepath.Join(dirPath, file.Name())
			if err := rl.LoadRuleFromFile(fullPath); err != nil {
				return fmt.Errorf("加载规则文件 %s 失败: %w", file.Name(), err)
			}
		}
	}
	return nil
}

// GetRule 根据规则ID获取规则配置
func (rl *RuleLoader) GetRule(ruleID uint32) (*RuleSpec, bool) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	spec, exists := rl.specs[ruleID]
	return spec, exists
}

// GetAllRules 获取所有规则配置的副本
func (rl *RuleLoader) GetAllRules() map[uint32]*RuleSpec {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	out := make(map[uint32]*RuleSpec, len(rl.specs))
	for id, spec := range rl.specs {
		out[id] = spec
	}
	return out
}

// AddRule 登记一条规则配置
func (rl *RuleLoader) AddRule(spec *RuleSpec) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.specs[spec.ID] = spec
}

// RemoveRule 移除一条规则配置
func (rl *RuleLoader) RemoveRule(ruleID uint32) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.specs, ruleID)
}
