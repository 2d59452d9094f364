package sessiondto

import "time"

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Snapshot is the read-only view of a session handed to renderers.
type Snapshot struct {
	SessionID     string        `json:"session_id"`
	Phase         string        `json:"phase"`
	Mode          string        `json:"mode"`
	White         string        `json:"white"`
	Black         string        `json:"black"`
	FEN           string        `json:"fen"`
	Turn          string        `json:"turn"`
	Ply           int           `json:"ply"`
	Moves         []string      `json:"moves"`
	LastMove      string        `json:"last_move,omitempty"`
	Selected      string        `json:"selected,omitempty"`
	Material      MaterialScore `json:"material"`
	QuietPlies    int           `json:"quiet_plies"`
	Result        string        `json:"result"`
	Winner        string        `json:"winner,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Headline      string        `json:"headline"`
	Detail        string        `json:"detail,omitempty"`
	RemotePending bool          `json:"remote_pending"`
	LastError     string        `json:"last_error,omitempty"`
	// PGN is filled once the game has ended.
	PGN           string        `json:"pgn,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
