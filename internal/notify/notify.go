// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

// Package notify collects errors that should be shown to the user, such as a
// preset folder that can't be read. Each error is keyed by a category and an
// identifier so that a later success can clear it.
package notify

import (
	"sort"
	"sync"
	"time"

	log "github.com/golang/glog"

	"github.com/westerndigitalcorporation/floe/internal/core"
)

// Notification is one outstanding error.
type Notification struct {
	Category string
	ID       string
	Kind     core.Error
	Message  string
	Time     time.Time
}

type key struct {
	category, id string
}

// Notifications is safe for concurrent use. The zero value is ready to use.
type Notifications struct {
	lock    sync.Mutex
	entries map[key]Notification
}

// Set records err under (category, id), replacing what was there.
func (n *Notifications) Set(category, id string, err error) {
	if err == nil {
		n.Clear(category, id)
		return
	}
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.entries == nil {
		n.entries = make(map[key]Notification)
	}
	k := key{category, id}
	if old, ok := n.entries[k]; !ok || old.Message != err.Error() {
		log.Errorf("%s %s: %s", category, id, err)
	}
	n.entries[k] = Notification{
		Category: category,
		ID:       id,
		Kind:     core.FromError(err),
		Message:  err.Error(),
		Time:     time.Now(),
	}
}

// Clear drops the error under (category, id), if any.
func (n *Notifications) Clear(category, id string) {
	n.lock.Lock()
	defer n.lock.Unlock()
	if _, ok := n.entries[key{category, id}]; ok {
		log.V(1).Infof("%s %s: cleared", category, id)
		delete(n.entries, key{category, id})
	}
}

// Snapshot returns the outstanding errors sorted by category and id.
func (n *Notifications) Snapshot() []Notification {
	n.lock.Lock()
	out := make([]Notification, 0, len(n.entries))
	for _, e := range n.entries {
		out = append(out, e)
	}
	n.lock.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of outstanding errors.
func (n *Notifications) Len() int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return len(n.entries)
}
