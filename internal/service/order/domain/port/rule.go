// internal/service/order/domain/port/rule.go
package port

import "context"

// RuleEngine 评估一条运营可配置的规则（CEL 表达式）。
// 挂牌过期、审核等策略通过它实现热调整，不需要发版。
type RuleEngine interface {
	Evaluate(ctx context.Context, rule string, facts map[string]interface{}) (bool, error)
}
