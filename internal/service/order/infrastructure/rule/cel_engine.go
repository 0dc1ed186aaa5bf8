// internal/service/order/infrastructure/rule/cel_engine.go
package rule

import (
	"context"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// CELRuleEngineAdapter 是 port.RuleEngine 接口的一个具体实现。
// 它使用 google/cel-go 执行规则评估，把表达式语言适配到我们自己的领域接口。
// 过期规则等运营策略因此可以放在配置里，改规则不用改代码。
type CELRuleEngineAdapter struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program // 规则表达式 -> 编译产物
}

// NewCELRuleEngineAdapter 创建一个新的规则引擎适配器实例。
func NewCELRuleEngineAdapter() (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("now", cel.TimestampType),
		cel.Variable("listing", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cel environment")
	}
	return &CELRuleEngineAdapter{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate 实现了 port.RuleEngine 接口。
// 同一条规则只编译一次，之后命中缓存。
func (a *CELRuleEngineAdapter) Evaluate(_ context.Context, rule string, facts map[string]interface{}) (bool, error) {
	program, err := a.compile(rule)
	if err != nil {
		return false, err
	}

	out, _, err := program.Eval(facts)
	if err != nil {
		return false, errors.Wrapf(err, "evaluate rule %q", rule)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("rule %q did not evaluate to a bool", rule)
	}
	return result, nil
}

func (a *CELRuleEngineAdapter) compile(rule string) (cel.Program, error) {
	a.mu.RLock()
	program, ok := a.programs[rule]
	a.mu.RUnlock()
	if ok {
		return program, nil
	}

	ast, issues := a.env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "compile rule %q", rule)
	}
	program, err := a.env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "build program for rule %q", rule)
	}

	a.mu.Lock()
	a.programs[rule] = program
	a.mu.Unlock()
	return program, nil
}
