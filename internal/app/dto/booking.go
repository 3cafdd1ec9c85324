package dto

import (
	domainbooking "staycal/internal/domain/booking"
)

type Booking struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	GuestID    string `json:"guest_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Status     string `json:"status"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:         string(b.ID),
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		CheckIn:    b.Stay.Start.Format(dateLayout),
		CheckOut:   b.Stay.End.Format(dateLayout),
		Status:     string(b.Status),
	}
}
