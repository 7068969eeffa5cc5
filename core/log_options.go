// Package core provides fundamental utilities for the taxreg service.
// This file contains option functions for customizing log entries.
package core

import (
	"github.com/google/uuid"
	"github.com/tfkr-ae/taxreg/domain"
)

// LogWithContext is an option to add a context map to a log entry.
func LogWithContext(context map[string]any) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.Context = context
		return nil
	}
}

// LogWithConnID is an option to associate a log entry with a connection ID.
func LogWithConnID(id uuid.UUID) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.ConnID = &id
		return nil
	}
}
