package rbac_test

import (
	"testing"

	"github.com/html-hub/learninghub/internal/rbac"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := rbac.NewChecker(nil)

	if !c.Has("student", "topic:view") || !c.Has("student", "exam:submit") {
		t.Fatalf("students can view topics and submit exams")
	}
	if c.Has("student", "topic:create") || c.Has("student", "topic:delete") {
		t.Fatalf("students must not author topics")
	}
	if !c.Has("admin", "topic:delete") || !c.Has("admin", "progress:view-all") {
		t.Fatalf("admin wildcard should cover everything")
	}
	if c.Has("nobody", "topic:view") {
		t.Fatalf("unknown roles have no permissions")
	}
}

func TestChecker_AnyAndPrefixPatterns(t *testing.T) {
	c := rbac.NewChecker(map[string][]string{"grader": {"progress:*"}})

	if !c.Any("grader", "topic:view", "progress:view-own") {
		t.Fatalf("any should match the second permission")
	}
	if c.Any("grader", "topic:view", "topic:create") {
		t.Fatalf("any without a match should fail")
	}
	if !c.Has("grader", "progress:write-own") {
		t.Fatalf("prefix pattern should match")
	}
}
