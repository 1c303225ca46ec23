// File: internal/infra/adapters/provider/limit_wrapper.go
package provider

import (
	"context"
	"time"

	"sixseven-backend/internal/domain/ports/adapter"

	"golang.org/x/sync/semaphore"
)

// Compile-time checks
var (
	_ adapter.ResearchProvider = (*limitedResearch)(nil)
	_ adapter.CreativeProvider = (*limitedCreative)(nil)
)

// The wrappers bound in-flight calls to a provider so a burst of jobs cannot
// open an unbounded number of connections. Polling reads count too: they are
// the bulk of the traffic.

type limitedResearch struct {
	inner adapter.ResearchProvider
	sem   *semaphore.Weighted
}

func NewLimitedResearch(inner adapter.ResearchProvider, maxConcurrent int) adapter.ResearchProvider {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedResearch{inner: inner, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

func (l *limitedResearch) CreateTask(ctx context.Context, query, timezone string) (*adapter.ResearchTask, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.CreateTask(ctx, query, timezone)
}

func (l *limitedResearch) GetTask(ctx context.Context, taskID string) (*adapter.ResearchTask, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.GetTask(ctx, taskID)
}

func (l *limitedResearch) PollInterval() time.Duration { return l.inner.PollInterval() }

type limitedCreative struct {
	inner adapter.CreativeProvider
	sem   *semaphore.Weighted
}

func NewLimitedCreative(inner adapter.CreativeProvider, maxConcurrent int) adapter.CreativeProvider {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedCreative{inner: inner, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

func (l *limitedCreative) Generate(ctx context.Context, req adapter.ImageRequest) (*adapter.CreativeTask, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.Generate(ctx, req)
}

func (l *limitedCreative) GetTask(ctx context.Context, taskID string) (*adapter.CreativeTask, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.GetTask(ctx, taskID)
}

func (l *limitedCreative) PollInterval() time.Duration { return l.inner.PollInterval() }
