package config

import (
	"strings"
	"time"

	"github.com/iliyamo/hammers-calendar/internal/model"
)

// defaultTicketTypes mirrors the club's ticket release windows, in release order.
const defaultTicketTypes = "bondholders:Bondholder,priority:Priority point,season:Season*,academy:Academy member,general:General sale"

// ClientConfig configures the command line client.  It replaces what the
// browser front-end kept as script-scope globals (ticket types, API root)
// with a value that is passed explicitly to the client, the navigator and
// the attendance toggler.
type ClientConfig struct {
	BaseURL     string             // API root, e.g. http://localhost:8080/
	Token       string             // bearer access token; empty means anonymous
	AttendDelay time.Duration      // optional pause before sending an attendance update
	Timeout     time.Duration      // per-request HTTP timeout
	TicketTypes []model.TicketType // ticket types offered by the navigation
}

// LoadClientConfig reads CALENDAR_* variables.  None are required.
func LoadClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:     envStr("CALENDAR_URL", "http://localhost:8080/"),
		Token:       envStr("CALENDAR_TOKEN", ""),
		AttendDelay: envDur("ATTEND_DELAY", 0),
		Timeout:     envDur("CALENDAR_TIMEOUT", 15*time.Second),
		TicketTypes: ParseTicketTypes(envStr("CALENDAR_TICKET_TYPES", defaultTicketTypes)),
	}
}

// ParseTicketTypes parses "name:Label,name:Label*" where a trailing '*'
// marks the default type.  When no entry is marked the first one becomes
// the default.
func ParseTicketTypes(s string) []model.TicketType {
	var out []model.TicketType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, label, ok := strings.Cut(part, ":")
		if !ok {
			label = name
		}
		tt := model.TicketType{Name: strings.TrimSpace(name), Label: strings.TrimSpace(label)}
		if strings.HasSuffix(tt.Label, "*") {
			tt.Label = strings.TrimSpace(strings.TrimSuffix(tt.Label, "*"))
			tt.Default = true
		}
		if tt.Name == "" {
			continue
		}
		out = append(out, tt)
	}
	hasDefault := false
	for _, tt := range out {
		if tt.Default {
			hasDefault = true
			break
		}
	}
	if !hasDefault && len(out) > 0 {
		out[0].Default = true
	}
	return out
}
