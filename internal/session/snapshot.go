package session

import "github.com/park285/shake-chess/pkg/sessiondto"

// Snapshot copies the session state into its wire form.
func (c *Controller) Snapshot() sessiondto.Snapshot {
	snap := sessiondto.Snapshot{
		SessionID:  c.id,
		Phase:      c.phase.String(),
		Mode:       c.mode.Name,
		White:      string(c.mode.White),
		Black:      string(c.mode.Black),
		FEN:        c.pos.FEN(),
		Turn:       c.turn.ToMove().String(),
		Ply:        c.ply,
		Result:     c.result.Kind.String(),
		Reason:     string(c.result.Reason),
		QuietPlies: c.guard.Quiet(),
		UpdatedAt:  c.now().UTC(),
	}
	material := c.pos.Material()
	snap.Material = sessiondto.MaterialScore{White: material.White, Black: material.Black}

	history := c.pos.History()
	snap.Moves = make([]string, 0, len(history))
	for _, mv := range history {
		snap.Moves = append(snap.Moves, mv.String())
	}
	if c.lastMove != nil {
		snap.LastMove = c.lastMove.String()
	}
	if c.result.Kind == ResultWin {
		snap.Winner = c.result.Winner.String()
	}
	if c.phase == PhaseEnded {
		snap.PGN = c.pos.PGN()
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	if p := c.Provider(c.turn.ToMove()); p != nil && c.phase == PhasePlaying {
		switch v := p.(type) {
		case *Human:
			if sq, ok := v.Selected(); ok {
				snap.Selected = sq.String()
			}
		case *RemoteEngine:
			st := v.Bridge().State()
			snap.RemotePending = st == BridgePending || st == BridgeReady
		}
	}
	snap.Headline, snap.Detail = c.headline()
	return snap
}

func (c *Controller) headline() (string, string) {
	switch c.phase {
	case PhaseMenu:
		return c.render("menu.headline", nil, "Choose a game mode"), ""
	case PhaseEnded:
		detail := c.render("result.reason."+string(c.result.Reason),
			map[string]any{"Method": c.result.Method}, string(c.result.Reason))
		if c.result.Kind == ResultWin {
			winner := c.result.Winner.String()
			return c.render("result.win", map[string]any{"Winner": winner}, "Winner: "+winner), detail
		}
		return c.render("result.draw", nil, "Draw"), detail
	default:
		side := c.turn.ToMove().String()
		return c.render("turn.headline", map[string]any{"Side": side}, side+"'s Turn!"), ""
	}
}

func (c *Controller) render(key string, data any, fallback string) string {
	if c.messages == nil {
		return fallback
	}
	text, err := c.messages.Render(key, data)
	if err != nil {
		return fallback
	}
	return text
}
