package backend

import "github.com/peter992013/bro/pkg/types"

// admit 判定本后端是否处理该规则
// 配置了准入覆盖时完全委托给它；否则按规则目标类别和后端开关判定
// 安装和卸载路径都必须先通过准入，被拒绝的规则是静默的no-op
func (b *Backend) admit(rule *types.Rule) bool {
	if b.cfg.Admit != nil {
		return b.cfg.Admit(rule)
	}

	switch rule.Target {
	case types.TargetMonitor:
		return b.cfg.Monitor
	case types.TargetForward:
		return b.cfg.Forward
	default:
		return false
	}
}
