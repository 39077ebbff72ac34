package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ByLCY/justify/layout"
)

// Memory is an in-process LRU cache. Entries are stored encoded so callers
// can never mutate a cached result.
type Memory struct {
	lru *expirable.LRU[string, []byte]
}

var _ Cache = (*Memory)(nil)

// NewMemory creates a cache holding at most size results for ttl each;
// ttl 0 keeps entries until they are evicted.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (*layout.Result, bool, error) {
	data, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	res, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (m *Memory) Set(_ context.Context, key string, res *layout.Result) error {
	data, err := encode(res)
	if err != nil {
		return err
	}
	m.lru.Add(key, data)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int { return m.lru.Len() }
