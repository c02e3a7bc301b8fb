// Package repository implements MongoDB persistence for users, events and
// applications. Every mutating helper relies on single-document atomicity
// only; cross-document consistency is the service layer's problem.
package repository

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("not found")

	// ErrNoTransactions is returned when the deployment cannot run
	// multi-document transactions (standalone mongod, or a session
	// cannot be started). Callers fall back to sequential writes.
	ErrNoTransactions = errors.New("transactions unavailable")
)

// transactionsUnsupported reports whether err indicates the server rejects
// transactions altogether, as opposed to a transaction that ran and failed.
func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Code == 20 { // IllegalOperation
			return true
		}
		return strings.Contains(cmdErr.Message, "Transaction numbers")
	}
	return false
}
