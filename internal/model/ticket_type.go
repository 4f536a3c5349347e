package model

// TicketType is one of the ticket release windows a user can view the
// calendar by (bondholders, priority point holders, season ticket holders...).
type TicketType struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Default bool   `json:"default,omitempty"`
}
