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

// Tx is a single transaction over the tasks and links relations. Every
// mutation performed through a Tx commits or rolls back as one unit with
// the enclosing Store.Update call.
//
// Identifier assignment: InsertTask and InsertLink assign a fresh,
// never-reused identifier when the record's ID is zero; a non-zero ID is
// trusted and reused (the import path relies on this), and the store's
// identifier counter ratchets above it so later inserts cannot collide.
type Tx interface {
	InsertTask(t *Task) error
	Task(id int64) (*Task, error)
	Tasks() ([]*Task, error)
	TasksByParent(parent int64) ([]*Task, error)
	UpdateTask(t *Task) error
	DeleteTask(id int64) error
	DeleteAllTasks() error

	InsertLink(l *Link) error
	Link(id int64) (*Link, error)
	Links() ([]*Link, error)
	DeleteLink(id int64) error
	DeleteAllLinks() error
}

// Store is the transactional record store the engine runs against.
// The closure-scoped transaction shape mirrors badger.DB.View/Update:
// returning an error from fn discards every write made through the Tx.
type Store interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn in a read-write transaction, committing on nil and
	// rolling back completely on error.
	Update(ctx context.Context, fn func(Tx) error) error
}
