// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schedule

import "context"

// LinkGraph owns the set of precedence links between task identifiers.
//
// Link endpoints are not existence-checked at write time (faithful to the
// source system); consistency is instead guaranteed by cascade cleanup:
// no link survives the deletion of either endpoint. Duplicate links are
// likewise not rejected. Self-loops are the one write-time check.
type LinkGraph struct {
	store Store
}

// NewLinkGraph creates a LinkGraph over the given store.
func NewLinkGraph(store Store) *LinkGraph {
	return &LinkGraph{store: store}
}

// List returns all links. No ordering is implied.
func (lg *LinkGraph) List(ctx context.Context) ([]*Link, error) {
	var links []*Link
	err := lg.store.View(ctx, func(tx Tx) error {
		var lerr error
		links, lerr = tx.Links()
		return lerr
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Create persists a new link with a fresh identifier. A nil linkType
// defaults to FinishToStart.
func (lg *LinkGraph) Create(ctx context.Context, source, target int64, linkType *int) (link *Link, err error) {
	defer func() { observeTaskOp("link_create", err) }()

	if source == target {
		return nil, ErrSelfLink
	}
	l := &Link{Source: source, Target: target, Type: FinishToStart}
	if linkType != nil {
		l.Type = *linkType
	}
	err = lg.store.Update(ctx, func(tx Tx) error {
		return tx.InsertLink(l)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes a link by identifier or returns ErrLinkNotFound.
func (lg *LinkGraph) Delete(ctx context.Context, id int64) (err error) {
	defer func() { observeTaskOp("link_delete", err) }()

	return lg.store.Update(ctx, func(tx Tx) error {
		return tx.DeleteLink(id)
	})
}

// PurgeEndpoints deletes every link whose source or target is in ids.
// The operation is idempotent: purging identifiers with no remaining
// links is a no-op. Returns the number of links removed.
func (lg *LinkGraph) PurgeEndpoints(ctx context.Context, ids []int64) (int, error) {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	var purged int
	err := lg.store.Update(ctx, func(tx Tx) error {
		var perr error
		purged, perr = purgeLinks(tx, set)
		return perr
	})
	if err != nil {
		return 0, err
	}
	linksPurgedTotal.Add(float64(purged))
	return purged, nil
}

// purgeLinks removes every link touching the identifier set within an
// existing transaction. Shared by LinkGraph.PurgeEndpoints and the
// TaskTree cascade delete.
func purgeLinks(tx Tx, ids map[int64]struct{}) (int, error) {
	links, err := tx.Links()
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, l := range links {
		_, srcHit := ids[l.Source]
		_, dstHit := ids[l.Target]
		if !srcHit && !dstHit {
			continue
		}
		if err := tx.DeleteLink(l.ID); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
