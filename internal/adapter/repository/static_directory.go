package repository

import (
	"context"
	"sync"

	"rentalhub/internal/domain/entity"
	"rentalhub/pkg/errors"
)

// StaticDirectory is an in-memory UserDirectory and PropertyDirectory for
// local development and tests.
type StaticDirectory struct {
	mu         sync.RWMutex
	users      map[string]*entity.User
	properties map[string]*entity.Property
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		users:      make(map[string]*entity.User),
		properties: make(map[string]*entity.Property),
	}
}

func (d *StaticDirectory) PutUser(user *entity.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

func (d *StaticDirectory) PutProperty(property *entity.Property) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.properties[property.ID] = property
}

func (d *StaticDirectory) GetUser(_ context.Context, id string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (d *StaticDirectory) GetProperty(_ context.Context, id string) (*entity.Property, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	property, ok := d.properties[id]
	if !ok {
		return nil, errors.NotFound("Property", nil)
	}
	copied := *property
	return &copied, nil
}
