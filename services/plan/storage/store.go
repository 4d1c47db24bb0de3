// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
)

// Key layout. Identifiers are zero-padded so lexicographic key order
// matches numeric identifier order under prefix iteration.
const (
	taskPrefix  = "task/"
	linkPrefix  = "link/"
	taskSeqKey  = "meta/seq/task"
	linkSeqKey  = "meta/seq/link"
	keyIDFormat = "%020d"
)

// BadgerStore implements schedule.Store over a BadgerDB instance.
//
// Records are JSON-encoded under "task/<id>" and "link/<id>" keys.
// Identifier counters live under "meta/seq/*" keys and are mutated inside
// the same transaction as the records they number, so an aborted
// transaction never burns or skips identifiers visible to a later one.
type BadgerStore struct {
	db *badger.DB
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error { return s.db.Close() }

// View runs fn in a read-only transaction.
func (s *BadgerStore) View(ctx context.Context, fn func(schedule.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&storeTx{txn: txn})
	})
}

// Update runs fn in a read-write transaction. Returning an error from fn
// discards every write; nothing partial is ever visible.
func (s *BadgerStore) Update(ctx context.Context, fn func(schedule.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&storeTx{txn: txn})
	})
}

// storeTx adapts one badger.Txn to the schedule.Tx contract.
type storeTx struct {
	txn *badger.Txn
}

func taskKey(id int64) []byte {
	return []byte(taskPrefix + fmt.Sprintf(keyIDFormat, id))
}

func linkKey(id int64) []byte {
	return []byte(linkPrefix + fmt.Sprintf(keyIDFormat, id))
}

// nextID increments and returns the counter stored at seqKey.
func (tx *storeTx) nextID(seqKey []byte) (int64, error) {
	var cur int64
	item, err := tx.txn.Get(seqKey)
	switch {
	case err == nil:
		verr := item.Value(func(val []byte) error {
			n, perr := strconv.ParseInt(string(val), 10, 64)
			if perr != nil {
				return fmt.Errorf("corrupt sequence %s: %w", seqKey, perr)
			}
			cur = n
			return nil
		})
		if verr != nil {
			return 0, verr
		}
	case errors.Is(err, badger.ErrKeyNotFound):
		cur = 0
	default:
		return 0, err
	}
	cur++
	if err := tx.txn.Set(seqKey, []byte(strconv.FormatInt(cur, 10))); err != nil {
		return 0, err
	}
	return cur, nil
}

// ratchetID raises the counter at seqKey to at least id, so explicitly
// supplied identifiers (import trusts file identifiers) are never handed
// out again.
func (tx *storeTx) ratchetID(seqKey []byte, id int64) error {
	var cur int64
	item, err := tx.txn.Get(seqKey)
	if err == nil {
		verr := item.Value(func(val []byte) error {
			cur, _ = strconv.ParseInt(string(val), 10, 64)
			return nil
		})
		if verr != nil {
			return verr
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	if id <= cur {
		return nil
	}
	return tx.txn.Set(seqKey, []byte(strconv.FormatInt(id, 10)))
}

func (tx *storeTx) setJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return tx.txn.Set(key, data)
}

func (tx *storeTx) getJSON(key []byte, v any, notFound error) error {
	item, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// InsertTask persists a task, assigning a fresh identifier when t.ID is
// zero and trusting (and ratcheting past) a non-zero one.
func (tx *storeTx) InsertTask(t *schedule.Task) error {
	if t.ID == 0 {
		id, err := tx.nextID([]byte(taskSeqKey))
		if err != nil {
			return err
		}
		t.ID = id
	} else if err := tx.ratchetID([]byte(taskSeqKey), t.ID); err != nil {
		return err
	}
	return tx.setJSON(taskKey(t.ID), t)
}

// Task looks up a task by identifier.
func (tx *storeTx) Task(id int64) (*schedule.Task, error) {
	var t schedule.Task
	if err := tx.getJSON(taskKey(id), &t, schedule.ErrTaskNotFound); err != nil {
		return nil, err
	}
	return &t, nil
}

// Tasks returns every task, in identifier order.
func (tx *storeTx) Tasks() ([]*schedule.Task, error) {
	tasks := []*schedule.Task{}
	err := tx.scan(taskPrefix, func(val []byte) error {
		var t schedule.Task
		if uerr := json.Unmarshal(val, &t); uerr != nil {
			return uerr
		}
		tasks = append(tasks, &t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// TasksByParent returns every task in one sibling group.
func (tx *storeTx) TasksByParent(parent int64) ([]*schedule.Task, error) {
	tasks := []*schedule.Task{}
	err := tx.scan(taskPrefix, func(val []byte) error {
		var t schedule.Task
		if uerr := json.Unmarshal(val, &t); uerr != nil {
			return uerr
		}
		if t.Parent == parent {
			tasks = append(tasks, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask rewrites an existing task or returns ErrTaskNotFound.
func (tx *storeTx) UpdateTask(t *schedule.Task) error {
	if _, err := tx.txn.Get(taskKey(t.ID)); errors.Is(err, badger.ErrKeyNotFound) {
		return schedule.ErrTaskNotFound
	} else if err != nil {
		return err
	}
	return tx.setJSON(taskKey(t.ID), t)
}

// DeleteTask removes a task by identifier or returns ErrTaskNotFound.
func (tx *storeTx) DeleteTask(id int64) error {
	if _, err := tx.txn.Get(taskKey(id)); errors.Is(err, badger.ErrKeyNotFound) {
		return schedule.ErrTaskNotFound
	} else if err != nil {
		return err
	}
	return tx.txn.Delete(taskKey(id))
}

// DeleteAllTasks clears the tasks relation. The identifier counter is
// left alone: identifiers are never reused.
func (tx *storeTx) DeleteAllTasks() error {
	return tx.deletePrefix(taskPrefix)
}

// InsertLink persists a link, assigning a fresh identifier when l.ID is
// zero.
func (tx *storeTx) InsertLink(l *schedule.Link) error {
	if l.ID == 0 {
		id, err := tx.nextID([]byte(linkSeqKey))
		if err != nil {
			return err
		}
		l.ID = id
	} else if err := tx.ratchetID([]byte(linkSeqKey), l.ID); err != nil {
		return err
	}
	return tx.setJSON(linkKey(l.ID), l)
}

// Link looks up a link by identifier.
func (tx *storeTx) Link(id int64) (*schedule.Link, error) {
	var l schedule.Link
	if err := tx.getJSON(linkKey(id), &l, schedule.ErrLinkNotFound); err != nil {
		return nil, err
	}
	return &l, nil
}

// Links returns every link, in identifier order.
func (tx *storeTx) Links() ([]*schedule.Link, error) {
	links := []*schedule.Link{}
	err := tx.scan(linkPrefix, func(val []byte) error {
		var l schedule.Link
		if uerr := json.Unmarshal(val, &l); uerr != nil {
			return uerr
		}
		links = append(links, &l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// DeleteLink removes a link by identifier or returns ErrLinkNotFound.
func (tx *storeTx) DeleteLink(id int64) error {
	if _, err := tx.txn.Get(linkKey(id)); errors.Is(err, badger.ErrKeyNotFound) {
		return schedule.ErrLinkNotFound
	} else if err != nil {
		return err
	}
	return tx.txn.Delete(linkKey(id))
}

// DeleteAllLinks clears the links relation.
func (tx *storeTx) DeleteAllLinks() error {
	return tx.deletePrefix(linkPrefix)
}

// scan iterates every value under a key prefix.
func (tx *storeTx) scan(prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := tx.txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// deletePrefix removes every key under a prefix. Keys are collected
// before deletion; mutating under a live iterator is not safe.
func (tx *storeTx) deletePrefix(prefix string) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := tx.txn.NewIterator(opts)
	keys := [][]byte{}
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, k := range keys {
		if err := tx.txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
