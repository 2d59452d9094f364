package sessiondto

const (
	CommandClick   = "click"
	CommandRestart = "restart"
	CommandMenu    = "menu"
	CommandStart   = "start"
)

// Command is an external request queued for the session's tick loop.
type Command struct {
	Type   string `json:"type"`
	Square string `json:"square,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "session error"
}
