package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
}

func (n *namedJob) Name() string              { return n.name }
func (n *namedJob) Run(context.Context) error { return nil }

func TestRegistryStoresJobsInOrder(t *testing.T) {
	registry := NewRegistry()
	first := &namedJob{name: "first"}
	second := &namedJob{name: "second"}
	registry.Register(first)
	registry.Register(nil)
	registry.Register(second)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != first || jobs[1] != second {
		t.Fatal("jobs returned out of order")
	}

	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("internal slice leaked")
	}
}
