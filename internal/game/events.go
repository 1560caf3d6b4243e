package game

import "fmt"

// EventType classifies an entry in the session log
type EventType string

const (
	EventDeal     EventType = "deal"
	EventAction   EventType = "action"
	EventDraw     EventType = "draw"
	EventRound    EventType = "round"
	EventShowdown EventType = "showdown"
	EventWin      EventType = "win"
)

// Event is one entry in a session's log. The log lives only as long as the
// session.
type Event struct {
	Type   EventType
	Seat   int
	Name   string
	Action string
	Amount int
	Detail string
}

// String formats the event for display
func (e Event) String() string {
	switch e.Type {
	case EventAction:
		if e.Amount > 0 {
			return fmt.Sprintf("%s %ss %d", e.Name, e.Action, e.Amount)
		}
		if e.Action == Call.String() {
			return fmt.Sprintf("%s checks", e.Name)
		}
		return fmt.Sprintf("%s %ss", e.Name, e.Action)
	case EventDraw:
		if e.Amount == 0 {
			return fmt.Sprintf("%s stands pat", e.Name)
		}
		return fmt.Sprintf("%s draws %d", e.Name, e.Amount)
	case EventWin:
		if e.Detail != "" {
			return fmt.Sprintf("%s wins %d with %s", e.Name, e.Amount, e.Detail)
		}
		return fmt.Sprintf("%s wins %d", e.Name, e.Amount)
	case EventShowdown:
		return fmt.Sprintf("%s shows %s", e.Name, e.Detail)
	default:
		return e.Detail
	}
}

func (s *Session) record(e Event) {
	if e.Name == "" && e.Seat >= 0 && e.Seat < NumSeats {
		e.Name = s.Seats[e.Seat].Name
	}
	s.Log = append(s.Log, e)
}
