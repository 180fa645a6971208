package metrics

import "sync/atomic"

// BackendMetrics 后端运行指标
type BackendMetrics struct {
	SubmittedFlowMods   uint64 // 已提交的flow_mod数
	AcceptedFlowMods    uint64 // 控制器接受的flow_mod数
	RejectedFlowMods    uint64 // 控制器同步拒绝的flow_mod数
	RulesAdded          uint64 // 安装成功的规则数
	RulesRemoved        uint64 // 移除成功的规则数
	RuleErrors          uint64 // 上报的错误总数
	Timeouts            uint64 // 超时的待决操作数
	UnsupportedEntities uint64 // 不支持的实体类型计数
	UnsupportedRules    uint64 // 不支持的规则动作计数
}

func (m *BackendMetrics) IncrementSubmitted() {
	atomic.AddUint64(&m.SubmittedFlowMods, 1)
}

func (m *BackendMetrics) IncrementAccepted() {
	atomic.AddUint64(&m.AcceptedFlowMods, 1)
}

func (m *BackendMetrics) IncrementRejected() {
	atomic.AddUint64(&m.RejectedFlowMods, 1)
}

func (m *BackendMetrics) IncrementRulesAdded() {
	atomic.AddUint64(&m.RulesAdded, 1)
}

func (m *BackendMetrics) IncrementRulesRemoved() {
	atomic.AddUint64(&m.RulesRemoved, 1)
}

func (m *BackendMetrics) IncrementRuleErrors() {
	atomic.AddUint64(&m.RuleErrors, 1)
}

func (m *BackendMetrics) IncrementTimeouts() {
	atomic.AddUint64(&m.Timeouts, 1)
}

func (m *BackendMetrics) IncrementUnsupportedEntities() {
	atomic.AddUint64(&m.UnsupportedEntities, 1)
}

func (m *BackendMetrics) IncrementUnsupportedRules() {
	atomic.AddUint64(&m.UnsupportedRules, 1)
}

// GetStats 返回所有指标的快照
func (m *BackendMetrics) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"submitted_flow_mods":  atomic.LoadUint64(&m.SubmittedFlowMods),
		"accepted_flow_mods":   atomic.LoadUint64(&m.AcceptedFlowMods),
		"rejected_flow_mods":   atomic.LoadUint64(&m.RejectedFlowMods),
		"rules_added":          atomic.LoadUint64(&m.RulesAdded),
		"rules_removed":        atomic.LoadUint64(&m.RulesRemoved),
		"rule_errors":          atomic.LoadUint64(&m.RuleErrors),
		"timeouts":             atomic.LoadUint64(&m.Timeouts),
		"unsupported_entities": atomic.LoadUint64(&m.UnsupportedEntities),
		"unsupported_rules":    atomic.LoadUint64(&m.UnsupportedRules),
	}
}
