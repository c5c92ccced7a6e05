package services

import "errors"

// Explorer errors
var (
	// ErrNoPublicationYears means no cleaned row carries a year, so the year
	// slider has no bounds.
	ErrNoPublicationYears = errors.New("no publication years available")
)
