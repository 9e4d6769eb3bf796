package cache

import (
	"container/list"
	"context"
	"sync"
)

// 文档注释：进程内 LRU 后端
// 背景：未配置 Redis/PostgreSQL 时的默认后端，也用于测试；超出容量淘汰最久未用条目。
// 约束：有效期由 Cache 统一判断，此处不做 TTL。
type MemoryStore struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element
}

type kv struct {
	k string
	v Entry
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 4096
	}
	return &MemoryStore{cap: capacity, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, k string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.dict[k]; ok {
		m.lst.MoveToFront(e)
		return e.Value.(kv).v, true, nil
	}
	return Entry{}, false, nil
}

func (m *MemoryStore) Set(_ context.Context, k string, v Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.dict[k]; ok {
		e.Value = kv{k: k, v: v}
		m.lst.MoveToFront(e)
		return nil
	}
	m.dict[k] = m.lst.PushFront(kv{k: k, v: v})
	for m.lst.Len() > m.cap {
		back := m.lst.Back()
		delete(m.dict, back.Value.(kv).k)
		m.lst.Remove(back)
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, k string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.dict[k]; ok {
		m.lst.Remove(e)
		delete(m.dict, k)
	}
	return nil
}

// Len 当前条目数
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lst.Len()
}
