package request

// ReserveSeatsRequest keeps seats in the order the customer picked them;
// ticket numbers follow that order. The cap keeps ticket numbers within T001..T060.
type ReserveSeatsRequest struct {
	ScheduleID string   `json:"schedule_id" validate:"required,uuid"`
	Seats      []string `json:"seats" validate:"max=60,unique,dive,required,max=10"`
}

type ConfirmPaymentRequest struct {
	ReservationID string  `json:"reservation_id" validate:"required,uuid"`
	Amount        float64 `json:"amount" validate:"gt=0,paise"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=upi card netbanking wallet cash"`
}
