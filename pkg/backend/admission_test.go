package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter992013/bro/pkg/types"
)

// 测试默认准入按目标类别和后端开关判定
func TestAdmitDefault(t *testing.T) {
	monitorRule := &types.Rule{ID: 1, Target: types.TargetMonitor}
	forwardRule := &types.Rule{ID: 2, Target: types.TargetForward}

	b := newTestBackend(&Config{Monitor: true, Forward: false})
	assert.True(t, b.admit(monitorRule))
	assert.False(t, b.admit(forwardRule))

	b = newTestBackend(&Config{Monitor: false, Forward: true})
	assert.False(t, b.admit(monitorRule))
	assert.True(t, b.admit(forwardRule))

	// 未知目标类别一律拒绝
	b = newTestBackend(&Config{Monitor: true, Forward: true})
	assert.False(t, b.admit(&types.Rule{ID: 3, Target: types.TargetType(99)}))
}

// 测试准入覆盖完全替换默认判定，不与它合并
func TestAdmitOverride(t *testing.T) {
	b := newTestBackend(&Config{
		Monitor: false,
		Forward: false,
		Admit: func(rule *types.Rule) bool {
			return rule.ID%2 == 1
		},
	})

	// 开关全关也由覆盖说了算
	assert.True(t, b.admit(&types.Rule{ID: 1, Target: types.TargetMonitor}))
	assert.False(t, b.admit(&types.Rule{ID: 2, Target: types.TargetForward}))
}

// 测试CEL准入表达式的编译和求值
func TestCompileAdmissionExpr(t *testing.T) {
	admit, err := CompileAdmissionExpr("rule.target == 'forward' && rule.priority < 100")
	require.NoError(t, err)

	assert.True(t, admit(&types.Rule{ID: 1, Target: types.TargetForward, Priority: 50}))
	assert.False(t, admit(&types.Rule{ID: 2, Target: types.TargetForward, Priority: 200}))
	assert.False(t, admit(&types.Rule{ID: 3, Target: types.TargetMonitor, Priority: 50}))
}

// 测试CEL表达式可以引用规则动作和ID
func TestCompileAdmissionExprRuleFields(t *testing.T) {
	admit, err := CompileAdmissionExpr("rule.type == 'drop' || rule.id == 42")
	require.NoError(t, err)

	assert.True(t, admit(&types.Rule{ID: 1, Type: types.RuleDrop}))
	assert.True(t, admit(&types.Rule{ID: 42, Type: types.RuleWhitelist}))
	assert.False(t, admit(&types.Rule{ID: 2, Type: types.RuleRedirect}))
}

// 测试非法表达式在编译期报错
func TestCompileAdmissionExprInvalid(t *testing.T) {
	// 语法错误
	_, err := CompileAdmissionExpr("rule.target ==")
	assert.Error(t, err)

	// 结果不是布尔类型
	_, err = CompileAdmissionExpr("rule.priority + 1")
	assert.Error(t, err)

	// 引用未声明的变量
	_, err = CompileAdmissionExpr("rule.unknown == 'x'")
	assert.Error(t, err)
}
