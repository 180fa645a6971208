package main

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter992013/bro/pkg/backend"
	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/transport"
	"github.com/peter992013/bro/pkg/types"
)

// chanHandler 把终态回调转发到channel
type chanHandler struct {
	added   chan string
	removed chan string
	errors  chan string
}

func newChanHandler() *chanHandler {
	return &chanHandler{
		added:   make(chan string, 16),
		removed: make(chan string, 16),
		errors:  make(chan string, 16),
	}
}

func (h *chanHandler) RuleAdded(rule *types.Rule, msg string)   { h.added <- msg }
func (h *chanHandler) RuleRemoved(rule *types.Rule, msg string) { h.removed <- msg }
func (h *chanHandler) RuleError(rule *types.Rule, msg string)   { h.errors <- msg }

func waitMsg(t *testing.T, ch chan string, what string) string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return ""
	}
}

// 端到端：规则经回环transport安装和卸载，每个操作恰好一次终态回调
func TestInstallUninstallThroughLoopback(t *testing.T) {
	handler := newChanHandler()
	loopback := transport.NewLoopback()

	b := backend.New(&backend.Config{
		Forward:        true,
		IdleTimeout:    60,
		PendingTimeout: 500 * time.Millisecond,
	}, loopback, handler)
	loopback.SetHandler(b)
	b.Start()
	defer b.Stop()

	_, subnet, err := net.ParseCIDR("10.0.0.0/24")
	require.NoError(t, err)
	rule := &types.Rule{
		ID:       7,
		Target:   types.TargetForward,
		Type:     types.RuleDrop,
		Entity:   types.NewAddressEntity(subnet),
		Priority: 10,
	}

	// 安装：两条提交共用键(7, ADD)，回环都回送成功，只有一次rule_added
	require.True(t, b.Install(rule))
	waitMsg(t, handler.added, "rule added")

	// 等超时窗口过去，确认没有多余的回调
	time.Sleep(700 * time.Millisecond)
	assert.Empty(t, handler.added)
	assert.Empty(t, handler.errors)
	assert.Empty(t, b.Pending())

	// 卸载：一条DELETE，一次rule_removed
	require.True(t, b.Uninstall(rule))
	waitMsg(t, handler.removed, "rule removed")
	assert.Empty(t, handler.errors)
}

// 端到端：monitor规则在forward-only的后端上是静默的no-op
func TestMonitorRuleNotAdmitted(t *testing.T) {
	handler := newChanHandler()
	loopback := transport.NewLoopback()

	b := backend.New(&backend.Config{Forward: true}, loopback, handler)
	loopback.SetHandler(b)
	b.Start()
	defer b.Stop()

	mac, err := net.ParseMAC("00:11:22:33:44:55")
	require.NoError(t, err)
	rule := &types.Rule{
		ID:     1,
		Target: types.TargetMonitor,
		Type:   types.RuleWhitelist,
		Entity: types.NewMACEntity(mac),
	}

	assert.False(t, b.Install(rule))
	assert.False(t, b.Uninstall(rule))

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, handler.added)
	assert.Empty(t, handler.removed)
	assert.Empty(t, handler.errors)
}

// 端到端：重定向规则编译出的指令带重定向端口
func TestRedirectRuleThroughLoopback(t *testing.T) {
	handler := newChanHandler()

	// 记录提交内容的包装transport
	var mods []*openflow.FlowMod
	loopback := transport.NewLoopback()
	recorder := submitRecorder{inner: loopback, mods: &mods}

	b := backend.New(&backend.Config{Forward: true}, &recorder, handler)
	loopback.SetHandler(b)
	b.Start()
	defer b.Stop()

	_, subnet, err := net.ParseCIDR("192.168.1.0/24")
	require.NoError(t, err)
	rule := &types.Rule{
		ID:      3,
		Target:  types.TargetForward,
		Type:    types.RuleRedirect,
		Entity:  types.NewAddressEntity(subnet),
		OutPort: 5,
	}

	require.True(t, b.Install(rule))
	waitMsg(t, handler.added, "rule added")

	require.NotEmpty(t, mods)
	for _, mod := range mods {
		assert.Equal(t, openflow.FlowAdd, mod.Command)
		assert.Equal(t, []uint32{5}, mod.OutPorts)
	}
}

// submitRecorder 在转发提交前记录flow_mod
type submitRecorder struct {
	inner openflow.Transport
	mods  *[]*openflow.FlowMod
}

func (r *submitRecorder) Submit(match *openflow.Match, mod *openflow.FlowMod) bool {
	*r.mods = append(*r.mods, mod)
	return r.inner.Submit(match, mod)
}
