package core

import "fmt"

// IdentifierPool hands out small integer ids and recycles released ones.
// Id 0 is never handed out so that it can mean "no resource".
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{owners: make([]interface{}, 1, 64)}
}

// Acquire returns a free id and records owner against it.
func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	for i := 1; i < len(p.owners); i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

// Lookup returns the owner registered for id, or nil.
func (p *IdentifierPool) Lookup(id uint32) interface{} {
	if id == 0 || int(id) >= len(p.owners) {
		return nil
	}
	return p.owners[id]
}

func (p *IdentifierPool) Release(id uint32) error {
	if id == 0 || int(id) >= len(p.owners) {
		return fmt.Errorf("release id '%d' out of range (max=%d): %w", id, len(p.owners)-1, ErrResourceNotFound)
	}
	if p.owners[id] == nil {
		return fmt.Errorf("id '%d' is not in use: %w", id, ErrResourceNotFound)
	}
	p.owners[id] = nil
	return nil
}

// Len returns the number of ids currently in use.
func (p *IdentifierPool) Len() int {
	n := 0
	for i := 1; i < len(p.owners); i++ {
		if p.owners[i] != nil {
			n++
		}
	}
	return n
}
