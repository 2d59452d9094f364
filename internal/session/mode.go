package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/park285/shake-chess/internal/chess"
)

type ProviderKind string

const (
	KindHuman  ProviderKind = "human"
	KindRandom ProviderKind = "random"
	KindRemote ProviderKind = "remote"
)

func ParseProviderKind(raw string) (ProviderKind, error) {
	switch k := ProviderKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindHuman, KindRandom, KindRemote:
		return k, nil
	case "ai", "local":
		return KindRandom, nil
	case "engine", "stockfish":
		return KindRemote, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
	}
}

// Mode assigns a provider kind to each side.
type Mode struct {
	Name  string
	White ProviderKind
	Black ProviderKind
}

var presets = map[string]Mode{
	"hotseat":   {Name: "hotseat", White: KindHuman, Black: KindHuman},
	"vsai":      {Name: "vsai", White: KindHuman, Black: KindRandom},
	"sim":       {Name: "sim", White: KindRandom, Black: KindRandom},
	"vsremote":  {Name: "vsremote", White: KindHuman, Black: KindRemote},
	"remotesim": {Name: "remotesim", White: KindRemote, Black: KindRandom},
}

// ParseMode resolves a preset name.
func ParseMode(name string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if m, ok := presets[key]; ok {
		return m, nil
	}
	return Mode{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownMode, name, strings.Join(ModeNames(), ", "))
}

func ModeNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithOverrides replaces the provider of either side when the override is
// non-empty. The mode is renamed "custom" if anything changed.
func (m Mode) WithOverrides(white, black string) (Mode, error) {
	out := m
	if strings.TrimSpace(white) != "" {
		k, err := ParseProviderKind(white)
		if err != nil {
			return Mode{}, err
		}
		out.White = k
	}
	if strings.TrimSpace(black) != "" {
		k, err := ParseProviderKind(black)
		if err != nil {
			return Mode{}, err
		}
		out.Black = k
	}
	if out.White != m.White || out.Black != m.Black {
		out.Name = "custom"
	}
	return out, nil
}

func (m Mode) For(side chess.Side) ProviderKind {
	if side == chess.Black {
		return m.Black
	}
	return m.White
}

func (m Mode) Uses(kind ProviderKind) bool {
	return m.White == kind || m.Black == kind
}
