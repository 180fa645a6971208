package transport

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/openflow"
)

// Loopback 是进程内的回环Transport实现
// 接受所有提交并异步回送成功通知，用于联调、干跑和测试。
// 真实的控制器集成在openflow.Transport的另一侧实现
type Loopback struct {
	mu      sync.Mutex
	handler openflow.CompletionHandler
	message string
}

// NewLoopback 创建回环transport
func NewLoopback() *Loopback {
	return &Loopback{message: "loopback flow_mod applied"}
}

// SetHandler 设置完成通知的接收方
func (l *Loopback) SetHandler(handler openflow.CompletionHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = handler
}

// Submit 接受提交并异步回送成功通知
func (l *Loopback) Submit(match *openflow.Match, mod *openflow.FlowMod) bool {
	l.mu.Lock()
	handler := l.handler
	l.mu.Unlock()

	logrus.Debugf("Loopback transport accepted flow_mod: command=%s cookie=%#x", mod.Command, mod.Cookie)
	if handler != nil {
		go handler.OnFlowSuccess(match, mod, l.message)
	}
	return true
}
