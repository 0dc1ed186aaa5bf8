package rule

import (
	"context"
	"testing"
	"time"
)

const expiryRule = `now - listing.published_at >= duration("720h")`

func listingFacts(age time.Duration, status string) map[string]interface{} {
	now := time.Now()
	return map[string]interface{}{
		"now": now,
		"listing": map[string]interface{}{
			"published_at": now.Add(-age),
			"status":       status,
		},
	}
}

func TestEvaluate_ExpiryRule(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatalf("NewCELRuleEngineAdapter() error = %v", err)
	}

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh listing", 24 * time.Hour, false},
		{"just under the threshold", 719 * time.Hour, false},
		{"stale listing", 721 * time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Evaluate(context.Background(), expiryRule, listingFacts(tt.age, "active"))
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_InvalidRule(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Evaluate(context.Background(), `listing.`, listingFacts(time.Hour, "active")); err == nil {
		t.Fatal("Evaluate() with a broken rule succeeded, want error")
	}
}

func TestEvaluate_NonBoolRule(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Evaluate(context.Background(), `listing.status`, listingFacts(time.Hour, "active")); err == nil {
		t.Fatal("Evaluate() with a non-bool rule succeeded, want error")
	}
}
