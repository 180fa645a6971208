package backend

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/types"
)

// CompileAdmissionExpr 把CEL表达式编译为准入判定函数
// 表达式对规则属性求值，结果必须是布尔类型，例如：
//
//	rule.target == 'forward' && rule.priority < 100
//
// 求值失败按拒绝处理，规则管理器不会收到任何通知
func CompileAdmissionExpr(expr string) (AdmitFunc, error) {
	// 创建CEL环境，声明规则的全部可引用属性
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("rule.id", decls.Int),
			decls.NewVar("rule.type", decls.String),
			decls.NewVar("rule.target", decls.String),
			decls.NewVar("rule.priority", decls.Int),
		),
	)
	if err != nil {
		return nil, types.NewBackendError("admission", fmt.Errorf("create cel env failed: %w", err))
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, types.NewBackendError("admission", fmt.Errorf("compile expression failed: %w", iss.Err()))
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, types.NewBackendError("admission", fmt.Errorf("expression must return bool, got %v", ast.OutputType()))
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, types.NewBackendError("admission", fmt.Errorf("build program failed: %w", err))
	}

	return func(rule *types.Rule) bool {
		vars := map[string]interface{}{
			"rule.id":       int64(rule.ID),
			"rule.type":     rule.Type.String(),
			"rule.target":   rule.Target.String(),
			"rule.priority": int64(rule.Priority),
		}
		out, _, err := program.Eval(vars)
		if err != nil {
			logrus.Errorf("Admission expression evaluation failed for rule %d: %v", rule.ID, err)
			return false
		}
		result, ok := out.Value().(bool)
		return ok && result
	}, nil
}
