// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package fleet

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/openwinch/winchctl/internal/winch"
)

// Selector shorthands. An empty selector targets winch 1, matching the
// common single-winch installation.
const (
	SelectorAll     = "all"
	SelectorDefault = ""
)

// Result is one winch's outcome of a fan-out dispatch.
type Result struct {
	ID      int
	Address string
	Err     error
}

// Resolve expands a target selector into winch IDs, in ascending order:
//
//	""         winch 1
//	"all", "*" every registered winch
//	"2"        a single ID
//	"1,3"      a comma-separated ID list
//	"garage"   a group name
func (m *Manager) Resolve(selector string) ([]int, error) {
	selector = strings.ToLower(strings.TrimSpace(selector))

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch selector {
	case SelectorDefault:
		if len(m.winches) == 0 {
			return nil, &winch.UnknownWinchError{ID: 1}
		}
		return []int{1}, nil
	case SelectorAll, "*":
		ids := make([]int, len(m.winches))
		for i := range m.winches {
			ids[i] = i + 1
		}
		return ids, nil
	}

	if isIDList(selector) {
		seen := make(map[int]bool)
		var ids []int
		for _, part := range strings.Split(selector, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, &winch.UnknownGroupError{Name: selector}
			}
			if id < 1 || id > len(m.winches) {
				return nil, &winch.UnknownWinchError{ID: id}
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		sort.Ints(ids)
		return ids, nil
	}

	members, ok := m.groups[selector]
	if !ok {
		return nil, &winch.UnknownGroupError{Name: selector}
	}
	ids := make([]int, 0, len(members))
	for _, w := range members {
		if id := m.idLocked(w); id > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// Dispatch resolves the selector and runs fn against every target winch
// concurrently. Each winch succeeds or fails on its own; one failed
// transport never blocks the others. Results come back in ID order.
func (m *Manager) Dispatch(ctx context.Context, selector string, fn func(ctx context.Context, w *Winch) error) []Result {
	ids, err := m.Resolve(selector)
	if err != nil {
		return []Result{{Err: err}}
	}

	results := make([]Result, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		w, err := m.Get(id)
		if err != nil {
			results[i] = Result{ID: id, Err: err}
			continue
		}
		results[i] = Result{ID: id, Address: w.Session.Address()}
		wg.Add(1)
		go func(i int, w *Winch) {
			defer wg.Done()
			results[i].Err = fn(ctx, w)
		}(i, w)
	}
	wg.Wait()
	return results
}

// FirstError returns the first failed result, or nil when all succeeded.
func FirstError(results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
