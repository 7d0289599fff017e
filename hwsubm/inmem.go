package hwsubm

import (
	"context"
	"sort"
	"sync"
)

type InMemStore struct {
	mu    sync.RWMutex
	subms map[Key]Record
}

var _ Store = (*InMemStore)(nil)

func NewInMemStore() *InMemStore {
	return &InMemStore{
		subms: make(map[Key]Record),
	}
}

func (s *InMemStore) Put(ctx context.Context, rec Record) error {
	if err := validateRecord(&rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subms[rec.Key()] = rec
	return nil
}

func (s *InMemStore) QueryWindow(ctx context.Context, classCode string, startUTC, endUTC int64) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Record, 0)
	for _, rec := range s.subms {
		if rec.ClassCode == classCode && rec.TimestampUTC >= startUTC && rec.TimestampUTC <= endUTC {
			res = append(res, rec)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].TimestampUTC != res[j].TimestampUTC {
			return res[i].TimestampUTC < res[j].TimestampUTC
		}
		return res[i].Key().SortKey() < res[j].Key().SortKey()
	})
	return res, nil
}
