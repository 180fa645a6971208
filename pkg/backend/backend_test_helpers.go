package backend

import (
	"time"

	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/types"
)

// 本文件提供backend包测试用的transport和事件处理器实现

// submission 记录一次提交的参数
type submission struct {
	match *openflow.Match
	mod   *openflow.FlowMod
}

// fakeTransport 记录所有提交，接受与否由accept字段控制
type fakeTransport struct {
	accept      bool
	submissions []submission
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{accept: true}
}

func (t *fakeTransport) Submit(match *openflow.Match, mod *openflow.FlowMod) bool {
	t.submissions = append(t.submissions, submission{match: match, mod: mod})
	return t.accept
}

// outcome 一次终态回调
type outcome struct {
	kind   string // added/removed/error
	ruleID uint32
	msg    string
}

// recordingHandler 把终态回调写入channel，便于测试等待异步结果
type recordingHandler struct {
	events chan outcome
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{events: make(chan outcome, 16)}
}

func (h *recordingHandler) RuleAdded(rule *types.Rule, msg string) {
	h.events <- outcome{kind: "added", ruleID: rule.ID, msg: msg}
}

func (h *recordingHandler) RuleRemoved(rule *types.Rule, msg string) {
	h.events <- outcome{kind: "removed", ruleID: rule.ID, msg: msg}
}

func (h *recordingHandler) RuleError(rule *types.Rule, msg string) {
	h.events <- outcome{kind: "error", ruleID: rule.ID, msg: msg}
}

// wait 等待下一次回调，超时返回false
func (h *recordingHandler) wait(timeout time.Duration) (outcome, bool) {
	select {
	case ev := <-h.events:
		return ev, true
	case <-time.After(timeout):
		return outcome{}, false
	}
}

// none 断定在窗口内没有任何回调
func (h *recordingHandler) none(window time.Duration) bool {
	select {
	case <-h.events:
		return false
	case <-time.After(window):
		return true
	}
}
