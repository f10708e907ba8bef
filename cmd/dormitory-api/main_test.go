package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type purgerStub struct {
	purged int64
	err    error
	calls  int
}

func (p *purgerStub) PurgeExpired(ctx context.Context) (int64, error) {
	p.calls++
	return p.purged, p.err
}

type prunerStub struct {
	calls int
}

func (p *prunerStub) Prune() int {
	p.calls++
	return 0
}

func TestSweepPrunesLimitersWhenPurgeFails(t *testing.T) {
	sessions := &purgerStub{err: errors.New("database is down")}
	limiter := &prunerStub{}

	sweep(context.Background(), sessions, limiter, zap.NewNop())

	assert.Equal(t, 1, sessions.calls)
	assert.Equal(t, 1, limiter.calls)
}

func TestSweepRunsBothSteps(t *testing.T) {
	sessions := &purgerStub{purged: 3}
	limiter := &prunerStub{}

	sweep(context.Background(), sessions, limiter, zap.NewNop())

	assert.Equal(t, 1, sessions.calls)
	assert.Equal(t, 1, limiter.calls)
}

func TestDocsBasePath(t *testing.T) {
	assert.Equal(t, "/api", docsBasePath("/api"))
	assert.Equal(t, "/v2", docsBasePath("/v2"))
	assert.Equal(t, "/", docsBasePath(""))
}
