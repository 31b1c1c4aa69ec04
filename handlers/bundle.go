package handlers

// HandlerBundle groups the endpoint handlers so route registration takes a
// single value.
type HandlerBundle struct {
	Booking  *BookingHandler
	Reminder *ReminderHandler
}
