package backend

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/types"
)

// ruleToFlowMod 把规则编译为ADD流表指令
// cookie由规则ID确定性编码，返回前一定经过配置的后处理钩子
func (b *Backend) ruleToFlowMod(rule *types.Rule) *openflow.FlowMod {
	mod := &openflow.FlowMod{
		Cookie:      openflow.EncodeCookie(rule.ID),
		Command:     openflow.FlowAdd,
		IdleTimeout: b.cfg.IdleTimeout,
		Priority:    clampPriority(int64(rule.Priority) + int64(b.cfg.PriorityOffset)),
	}

	// 过期时间换算成整秒，小数部分截断
	if rule.Expire > 0 {
		mod.HardTimeout = clampTimeout(int64(rule.Expire / time.Second))
	}

	if b.cfg.TableID != nil {
		tableID := *b.cfg.TableID
		mod.TableID = &tableID
	}

	switch rule.Type {
	case types.RuleDrop:
		// 不设置输出端口即隐式丢弃
	case types.RuleWhitelist:
		// OFPP_NORMAL：交给交换机的正常二三层转发
		mod.OutPorts = []uint32{openflow.PortNormal}
	case types.RuleRedirect:
		mod.OutPorts = []uint32{rule.OutPort}
	default:
		// 不支持的规则动作：记录错误后继续，指令按丢弃语义返回
		logrus.Errorf("Unsupported rule type %d in flow_mod compilation", rule.Type)
		b.metrics.IncrementUnsupportedRules()
	}

	if b.cfg.FlowModHook != nil {
		mod = b.cfg.FlowModHook(rule, mod)
	}
	return mod
}

// deleteFlowMod 构造移除规则的DELETE指令
// 独立的构造路径：不设置超时和输出端口，不经过规则动作分支
func (b *Backend) deleteFlowMod(rule *types.Rule) *openflow.FlowMod {
	mod := &openflow.FlowMod{
		Cookie:  openflow.EncodeCookie(rule.ID),
		Command: openflow.FlowDelete,
	}
	if b.cfg.FlowModHook != nil {
		mod = b.cfg.FlowModHook(rule, mod)
	}
	return mod
}

// clampPriority 把优先级饱和转换到协议的16位宽度
func clampPriority(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// clampTimeout 把秒数饱和转换到协议的16位宽度
func clampTimeout(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
