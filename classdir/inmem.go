package classdir

import (
	"context"
	"sort"
	"sync"
)

type InMemDirectory struct {
	mu      sync.RWMutex
	classes map[string]ClassRecord
}

var _ Registry = (*InMemDirectory)(nil)

func NewInMemDirectory(classes ...ClassRecord) *InMemDirectory {
	d := &InMemDirectory{classes: make(map[string]ClassRecord)}
	for _, c := range classes {
		d.classes[c.ClassCode] = c
	}
	return d
}

func (d *InMemDirectory) FindByCode(ctx context.Context, classCode string) (*ClassRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if c, ok := d.classes[classCode]; ok {
		return &c, nil
	}
	return nil, nil
}

func (d *InMemDirectory) FindByChannel(ctx context.Context, channelID string) (*ClassRecord, error) {
	return d.findFirst(func(c *ClassRecord) bool { return c.HasChannel(channelID) }), nil
}

func (d *InMemDirectory) FindByRole(ctx context.Context, roleID string) (*ClassRecord, error) {
	return d.findFirst(func(c *ClassRecord) bool { return c.RoleID == roleID }), nil
}

func (d *InMemDirectory) Save(ctx context.Context, class ClassRecord) error {
	if err := validateNew(ctx, d, &class); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classes[class.ClassCode] = class
	return nil
}

// findFirst scans in class code order so results are stable.
func (d *InMemDirectory) findFirst(match func(*ClassRecord) bool) *ClassRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	codes := make([]string, 0, len(d.classes))
	for code := range d.classes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		c := d.classes[code]
		if match(&c) {
			return &c
		}
	}
	return nil
}
