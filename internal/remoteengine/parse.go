package remoteengine

import (
	"fmt"
	"strings"

	"github.com/park285/shake-chess/internal/chess"
)

// ParseBestMove extracts the move from a best-move line such as
// "bestmove e2e4 ponder e7e5" or "e2e4 e7e5 g1f3". The first token after an
// optional "bestmove" keyword must be a UCI move: four square characters and
// an optional promotion letter.
func ParseBestMove(text string) (chess.Move, error) {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.EqualFold(fields[0], "bestmove") {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return chess.Move{}, fmt.Errorf("%w: empty best move in %q", ErrMalformedMove, text)
	}
	mv, err := chess.ParseUCI(fields[0])
	if err != nil {
		return chess.Move{}, fmt.Errorf("%w: %q: %v", ErrMalformedMove, fields[0], err)
	}
	return mv, nil
}
