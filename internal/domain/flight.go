package domain

import "time"

// Flight is a row of the external flight schedule store. The expiry sweeper
// joins bids against it; the booking wizard only browses it.
type Flight struct {
	ID            int64
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	TotalSeats    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
