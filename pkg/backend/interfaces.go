package backend

import "github.com/peter992013/bro/pkg/types"

// EventHandler 定义向规则管理器回报终态结果的接口
// 每个被跟踪的操作恰好产生一次回调；未通过准入的规则不产生任何回调
type EventHandler interface {
	// RuleAdded 规则安装成功
	RuleAdded(rule *types.Rule, msg string)
	// RuleRemoved 规则移除成功
	RuleRemoved(rule *types.Rule, msg string)
	// RuleError 操作失败（提交被拒、异步失败或超时）
	RuleError(rule *types.Rule, msg string)
}
