// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package protocol

import (
	"sync"

	"github.com/pkg/errors"
)

// Registry is the hub of all protocols deployed on the chain
type Registry struct {
	mu        sync.RWMutex
	ids       map[string]int
	protocols []Protocol
}

// NewRegistry create a new Registry
func NewRegistry() *Registry {
	return &Registry{
		ids:       make(map[string]int),
		protocols: make([]Protocol, 0),
	}
}

// Register registers the protocol under its name
func (r *Registry) Register(p Protocol) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.Name()
	if _, exist := r.ids[id]; exist {
		return errors.Errorf("protocol %s is already registered", id)
	}
	r.ids[id] = len(r.protocols)
	r.protocols = append(r.protocols, p)
	return nil
}

// Find finds a protocol by name
func (r *Registry) Find(id string) (Protocol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.ids[id]
	if !ok {
		return nil, false
	}
	return r.protocols[idx], true
}

// All returns all protocols in registration order
func (r *Registry) All() []Protocol {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Protocol, len(r.protocols))
	copy(all, r.protocols)
	return all
}
