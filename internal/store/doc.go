// Package store provides SQLite-backed durable storage for gym records.
//
// One table, gyms, keyed by id with secondary indexes on name and
// created_at. Each operation touches a single record and is atomic on its own;
// there are no multi-record transactions.
//
// # Ordering
//
// ListAll returns records ORDER BY created_at DESC, id DESC COLLATE BINARY.
// created_at is stored as a fixed-width ISO-8601 string (see
// gym.TimestampLayout), so string order is chronological order.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - user_version=1: static schema version, no migration path beyond it
package store
