// Package catalog holds a user's property collection and the seed catalog it is
// merged from.
package catalog

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// ErrPropertyNotFound is returned when an id is not in the collection.
var ErrPropertyNotFound = errors.New("property not found")

// Collection is an ordered, concurrency-safe set of property records. The version
// increases on every change so derived views can be invalidated.
type Collection struct {
	mu      sync.RWMutex
	items   []models.Property
	version uint64
}

// NewCollection creates a collection holding records in the given order.
func NewCollection(records []models.Property) *Collection {
	return &Collection{items: slices.Clone(records), version: 1}
}

// Snapshot returns a copy of the records together with the version they belong to.
func (c *Collection) Snapshot() ([]models.Property, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items), c.version
}

// Clone returns an independent copy at the same version. Changes to the copy do
// not affect c.
func (c *Collection) Clone() *Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Collection{items: slices.Clone(c.items), version: c.version}
}

// Version returns the current version.
func (c *Collection) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the record with the given id.
func (c *Collection) Get(id string) (models.Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], nil
	}
	return models.Property{}, ErrPropertyNotFound
}

// Add validates a hand-entered record, assigns it an id and appends it.
// The name defaults to the city.
func (c *Collection) Add(p models.Property) (models.Property, error) {
	if err := p.Validate(); err != nil {
		return models.Property{}, err
	}
	if p.Name == "" {
		p.Name = p.City
	}
	p.ID = uuid.New().String()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, p)
	c.version++
	return p, nil
}

// Update replaces the record with the same id, keeping its position.
func (c *Collection) Update(p models.Property) (models.Property, error) {
	if err := p.Validate(); err != nil {
		return models.Property{}, err
	}
	if p.Name == "" {
		p.Name = p.City
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(p.ID)
	if i < 0 {
		return models.Property{}, ErrPropertyNotFound
	}
	c.items[i] = p
	c.version++
	return p, nil
}

// Remove deletes the record with the given id.
func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return ErrPropertyNotFound
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.version++
	return nil
}

// ApplyFinancing stamps the loan terms onto every record.
func (c *Collection) ApplyFinancing(t models.LoanTerms) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i] = c.items[i].ApplyFinancing(t)
	}
	c.version++
}

func (c *Collection) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(p models.Property) bool { return p.ID == id })
}
