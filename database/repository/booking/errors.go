// File: database/repository/booking/errors.go
package bookingRepo

import "fmt"

// InsufficientInventoryError reports which slot could not cover a
// requested quantity; the whole transaction it occurred in was aborted.
type InsufficientInventoryError struct {
	InstanceID string
	Date       string
	Requested  int
	Available  int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient tickets for slot %s on %s: requested %d, available %d",
		e.InstanceID, e.Date, e.Requested, e.Available)
}
