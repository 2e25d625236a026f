// Package xid generates prefixed record ids.
package xid

import "github.com/google/uuid"

// New returns a fresh id like "tx-9f2c...". The prefix marks the record
// kind when ids show up in logs or the replica table.
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
