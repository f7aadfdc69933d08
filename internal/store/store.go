// Package store persists scan records and their postings.
package store

import "errors"

var ErrNotFound = errors.New("scan not found")
