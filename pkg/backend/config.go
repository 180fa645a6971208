package backend

import (
	"time"

	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/types"
)

// 缺省的待决操作超时窗口
const DefaultPendingTimeout = 20 * time.Second

// AdmitFunc 准入判定函数，设置后完全替换默认的monitor/forward判定
type AdmitFunc func(rule *types.Rule) bool

// MatchHook 匹配规格后处理钩子，编译结果返回前一定经过它
type MatchHook func(matches []*openflow.Match) []*openflow.Match

// FlowModHook 流表指令后处理钩子
type FlowModHook func(rule *types.Rule, mod *openflow.FlowMod) *openflow.FlowMod

// Config 表示后端级配置，构造时设置一次，之后不再变更
type Config struct {
	Monitor        bool          // 是否处理monitor类规则
	Forward        bool          // 是否处理forward类规则
	IdleTimeout    uint16        // 流表项空闲超时（秒）
	TableID        *uint8        // 固定流表号，nil表示不指定
	PriorityOffset int32         // 优先级偏移
	PendingTimeout time.Duration // 待决操作超时窗口

	// 可选的覆盖钩子
	Admit       AdmitFunc   // 准入判定，替换默认行为
	MatchHook   MatchHook   // 匹配规格后处理
	FlowModHook FlowModHook // 流表指令后处理
}

// withDefaults 补齐未设置的配置项
func (c *Config) withDefaults() *Config {
	out := *c
	if out.PendingTimeout <= 0 {
		out.PendingTimeout = DefaultPendingTimeout
	}
	return &out
}
