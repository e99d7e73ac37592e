package entity

import (
	"strconv"
	"time"
)

// ViewKey identifies the stream of requests one client makes for one view.
type ViewKey struct {
	Session string
	View    string
	Account int64
}

// String renders the key for logging.
func (k ViewKey) String() string {
	return k.Session + "/" + k.View + "/" + strconv.FormatInt(k.Account, 10)
}

// ViewTicket is handed out when a view request starts.
// The result is only served while the ticket's range is still the latest one for its key.
type ViewTicket struct {
	ID        string
	Key       ViewKey
	TimeRange string
	IssuedAt  time.Time
}
