// README: Shared value objects used across modules.
package types

// ID is an opaque stable identifier assigned by the messaging transport.
type ID string

type Money struct {
	Amount   int64 // cents
	Currency string
}

type Point struct {
	Lat float64
	Lng float64
}
