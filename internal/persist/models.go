package persist

import "time"

// Session is one named conversation, e.g. "default" for the REPL.
type Session struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single stored turn. Tool names the handler that produced an
// assistant turn and is empty for user turns.
type Message struct {
	ID        int64
	SessionID int64
	Role      string // "user" | "assistant"
	Content   string
	Tool      string
	CreatedAt time.Time
}

// scanner interface for both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
