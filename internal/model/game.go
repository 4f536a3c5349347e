package model

import "time"

// Location says whether a game is played at home or away.
type Location string

const (
	Home Location = "HOME"
	Away Location = "AWAY"
)

// Competition identifies the tournament a game belongs to.
type Competition string

const (
	Premiership  Competition = "PREM"
	Championship Competition = "FLC"
	LeagueCup    Competition = "LGCP"
	FACup        Competition = "FACP"
	PlayOffs     Competition = "FLCPO"
)

var competitionNames = map[Competition]string{
	Premiership:  "Premiership",
	Championship: "Championship",
	LeagueCup:    "League Cup",
	FACup:        "FA Cup",
	PlayOffs:     "Play-Offs",
}

// Name returns the display name of the competition, or the raw code for
// competitions the calendar does not know about.
func (c Competition) Name() string {
	if n, ok := competitionNames[c]; ok {
		return n
	}
	return string(c)
}

// Game is a fixture a user may mark attendance for.  Attended is owned by
// the server and is always reported for the requesting user.
//
// Fields:
//  ID                – stable identifier assigned by the server.
//  Season            – year the season started in.
//  At                – kick-off time (UTC).
//  Opponents         – name of the opposing club.
//  Competition       – competition code.
//  Location          – HOME or AWAY.
//  Result            – final score, empty until played.
//  Attendance        – reported crowd, nil until played.
//  MatchReport       – link to the match report, if any.
//  TelevisionChannel – broadcaster, empty when not televised.
//  Tickets           – ticket type name -> when those tickets go on sale.
//  Attended          – whether the requesting user attended.
type Game struct {
	ID                uint64               `json:"id"`
	Season            int                  `json:"season"`
	At                time.Time            `json:"at"`
	Opponents         string               `json:"opponents"`
	Competition       Competition          `json:"competition"`
	Location          Location             `json:"location"`
	Result            string               `json:"result,omitempty"`
	Attendance        *int                 `json:"attendance,omitempty"`
	MatchReport       string               `json:"matchReport,omitempty"`
	TelevisionChannel string               `json:"televisionChannel,omitempty"`
	Tickets           map[string]time.Time `json:"tickets,omitempty"`
	Attended          bool                 `json:"attended"`
}

// Season is one entry of the seasons listing.
type Season struct {
	Year int `json:"year"`
}

// Base is the bootstrap document a client fetches first: the latest season
// and, for authenticated callers, the user's name.
type Base struct {
	Year int     `json:"year"`
	Name *string `json:"name"`
}
