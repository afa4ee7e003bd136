package entity

// KitchenTicketLine is a single dish on a printed kitchen ticket.
type KitchenTicketLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

// KitchenTicket is a value object for a printable kitchen ticket.
// It is composed from a KitchenOrder at print time and never stored.
type KitchenTicket struct {
	Title        string              `json:"title"`
	TicketID     string              `json:"ticket_id"`
	OrderNumber  string              `json:"order_number"`
	Table        string              `json:"table,omitempty"`
	NotifiedAt   string              `json:"notified_at"`
	IsAdditional bool                `json:"is_additional"`
	Lines        []KitchenTicketLine `json:"lines"`
}
