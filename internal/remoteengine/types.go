package remoteengine

import "errors"

var (
	// ErrUnavailable covers transport failures, timeouts and non-2xx replies.
	ErrUnavailable = errors.New("remote engine unavailable")
	// ErrMalformedResponse covers undecodable bodies and explicit failures.
	ErrMalformedResponse = errors.New("malformed remote engine response")
	ErrMalformedMove     = errors.New("malformed best move")
)

// BestMoveResponse is the JSON body returned by the move service.
type BestMoveResponse struct {
	// Success is absent on some deployments; only an explicit false is an
	// error.
	Success      *bool    `json:"success,omitempty"`
	Evaluation   *float64 `json:"evaluation,omitempty"`
	Mate         *int     `json:"mate,omitempty"`
	BestMove     string   `json:"bestmove"`
	Continuation string   `json:"continuation,omitempty"`
	// Data carries the error text when Success is false.
	Data string `json:"data,omitempty"`
}
