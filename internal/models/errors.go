package models

import "errors"

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidRecord     = errors.New("invalid match record")
	ErrEmptyRankingTable = errors.New("ranking table has never been published")
	ErrSourceDisabled    = errors.New("match source is disabled")
)
