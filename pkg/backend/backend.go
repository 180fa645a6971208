package backend

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/metrics"
	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/types"
)

// 超时条目上报给规则管理器的错误消息
const timeoutErrorMsg = "Timeout during rule insertion/removal"

// 提交被控制器同步拒绝时的错误消息
const submitErrorMsg = "Error while executing OpenFlow flow_mod"

// Backend 是网络控制规则的OpenFlow后端
// 负责把抽象规则编译为flow_mod操作、提交给控制器，并把之后
// 异步到达的成功/失败通知关联回原始规则。实现openflow.CompletionHandler
type Backend struct {
	mu        sync.Mutex
	cfg       *Config
	transport openflow.Transport
	handler   EventHandler
	tracker   *tracker
	metrics   *metrics.BackendMetrics
}

// New 创建OpenFlow后端
func New(cfg *Config, transport openflow.Transport, handler EventHandler) *Backend {
	b := &Backend{
		cfg:       cfg.withDefaults(),
		transport: transport,
		handler:   handler,
		metrics:   &metrics.BackendMetrics{},
	}
	b.tracker = newTracker(b.cfg.PendingTimeout, b.onPendingExpired)
	return b
}

// Start 启动后端的到期协程
func (b *Backend) Start() {
	b.tracker.start()
	logrus.Infof("OpenFlow backend started, pending timeout %v", b.cfg.PendingTimeout)
}

// Stop 停止后端
func (b *Backend) Stop() {
	b.tracker.stop()
	logrus.Info("OpenFlow backend stopped")
}

// Install 安装规则
// 返回true表示规则被本后端受理，与单次提交的成败无关；
// 未通过准入时返回false且不产生任何通知
func (b *Backend) Install(rule *types.Rule) bool {
	if !b.admit(rule) {
		return false
	}

	mod := b.ruleToFlowMod(rule)
	matches := b.entityToMatch(rule.Entity)

	// 持锁跨越提交和登记，保证完成通知不会先于register被处理
	var rejected int
	b.mu.Lock()
	for _, match := range matches {
		b.metrics.IncrementSubmitted()
		if b.transport.Submit(match, mod) {
			b.metrics.IncrementAccepted()
			b.tracker.register(pendingKey{RuleID: rule.ID, Command: mod.Command}, rule)
		} else {
			b.metrics.IncrementRejected()
			rejected++
		}
	}
	b.mu.Unlock()

	// 被拒的提交立即上报错误，不跟踪也不重试
	for i := 0; i < rejected; i++ {
		b.metrics.IncrementRuleErrors()
		b.handler.RuleError(rule, submitErrorMsg)
	}

	logrus.Debugf("Installed rule %d: %d flow_mod(s) submitted, %d rejected", rule.ID, len(matches), rejected)
	return true
}

// Uninstall 卸载规则
// 直接构造DELETE指令并以全通配匹配提交，不经过规则动作分支
func (b *Backend) Uninstall(rule *types.Rule) bool {
	if !b.admit(rule) {
		return false
	}

	mod := b.deleteFlowMod(rule)

	b.mu.Lock()
	b.metrics.IncrementSubmitted()
	accepted := b.transport.Submit(&openflow.Match{}, mod)
	if accepted {
		b.metrics.IncrementAccepted()
		b.tracker.register(pendingKey{RuleID: rule.ID, Command: mod.Command}, rule)
	} else {
		b.metrics.IncrementRejected()
	}
	b.mu.Unlock()

	if !accepted {
		b.metrics.IncrementRuleErrors()
		b.handler.RuleError(rule, submitErrorMsg)
	}

	logrus.Debugf("Uninstalled rule %d: delete flow_mod submitted", rule.ID)
	return true
}

// OnFlowSuccess 控制器的成功通知
// 从cookie还原规则ID并解除关联；查不到的通知（已完成、已超时
// 或根本不是本后端下发的）直接忽略
func (b *Backend) OnFlowSuccess(match *openflow.Match, mod *openflow.FlowMod, msg string) {
	rule, ok := b.resolveNotification(mod)
	if !ok {
		return
	}

	switch mod.Command {
	case openflow.FlowAdd:
		b.metrics.IncrementRulesAdded()
		b.handler.RuleAdded(rule, msg)
	case openflow.FlowDelete, openflow.FlowDeleteStrict:
		b.metrics.IncrementRulesRemoved()
		b.handler.RuleRemoved(rule, msg)
	}
}

// OnFlowFailure 控制器的失败通知
func (b *Backend) OnFlowFailure(match *openflow.Match, mod *openflow.FlowMod, msg string) {
	rule, ok := b.resolveNotification(mod)
	if !ok {
		return
	}

	b.metrics.IncrementRuleErrors()
	b.handler.RuleError(rule, msg)
}

// resolveNotification 把完成通知关联回待决的规则
func (b *Backend) resolveNotification(mod *openflow.FlowMod) (*types.Rule, bool) {
	ruleID, ok := openflow.DecodeCookie(mod.Cookie)
	if !ok {
		logrus.Debugf("Ignoring notification with foreign cookie %#x", mod.Cookie)
		return nil, false
	}

	b.mu.Lock()
	rule, ok := b.tracker.resolve(pendingKey{RuleID: ruleID, Command: mod.Command})
	b.mu.Unlock()
	if !ok {
		logrus.Debugf("Ignoring notification for unknown operation (rule %d, %s)", ruleID, mod.Command)
		return nil, false
	}
	return rule, true
}

// onPendingExpired 待决操作超时回调，由tracker的到期协程触发
func (b *Backend) onPendingExpired(rule *types.Rule) {
	b.metrics.IncrementTimeouts()
	b.metrics.IncrementRuleErrors()
	b.handler.RuleError(rule, timeoutErrorMsg)
}

// Pending 返回所有待决操作的只读视图
func (b *Backend) Pending() []PendingInfo {
	return b.tracker.snapshot()
}

// Metrics 返回后端指标
func (b *Backend) Metrics() *metrics.BackendMetrics {
	return b.metrics
}
