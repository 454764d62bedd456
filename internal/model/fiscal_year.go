// Package model defines the core domain types shared across the application.
package model

import "time"

// FiscalYear represents a budgeting period as defined by the backend.
type FiscalYear struct {
	StartDate time.Time
	EndDate   time.Time
	Name      string
	ID        int
	Active    bool
}

// Contains reports whether the given date falls inside the fiscal year.
func (f *FiscalYear) Contains(date time.Time) bool {
	return !date.Before(f.StartDate) && !date.After(f.EndDate)
}
