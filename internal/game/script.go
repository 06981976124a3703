package game

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/magefree/hearthstone-go/internal/game/rules"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Action types accepted by Apply.
const (
	ActionStart   = "start"
	ActionSummon  = "summon"
	ActionSpell   = "spell"
	ActionWeapon  = "weapon"
	ActionAttack  = "attack"
	ActionEndTurn = "end_turn"
)

// Action is one player command of an action script. Characters are
// addressed as "hero:<player>" or "desk:<player>:<index>".
type Action struct {
	Type   string `yaml:"type"`
	Hand   int    `yaml:"hand"`
	Index  int    `yaml:"index"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

func (a Action) String() string {
	return fmt.Sprintf("%s(hand=%d index=%d source=%q target=%q)", a.Type, a.Hand, a.Index, a.Source, a.Target)
}

// ParseScript decodes a YAML list of actions.
func ParseScript(data []byte) ([]Action, error) {
	var actions []Action
	if err := yaml.Unmarshal(data, &actions); err != nil {
		return nil, fmt.Errorf("failed to decode action script: %w", err)
	}
	return actions, nil
}

// LoadScript reads and decodes an action script file.
func LoadScript(path string) ([]Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read action script: %w", err)
	}
	return ParseScript(data)
}

// Resolve finds the character addressed by ref. An empty ref resolves to
// nil without error.
func (g *Game) Resolve(ref string) (rules.Character, error) {
	if ref == "" {
		return nil, nil
	}
	parts := strings.Split(ref, ":")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: bad character reference %q", ErrIllegalAction, ref)
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad player in %q", ErrIllegalAction, ref)
	}
	p := g.Player(pid)
	if p == nil {
		return nil, fmt.Errorf("%w: no player %d", ErrIllegalAction, pid)
	}

	switch {
	case parts[0] == "hero" && len(parts) == 2:
		return p.Hero, nil
	case parts[0] == "desk" && len(parts) == 3:
		idx, err := strconv.Atoi(parts[2])
		if err != nil || idx < 0 || idx >= len(p.Desk) {
			return nil, fmt.Errorf("%w: no minion at %q", ErrIllegalAction, ref)
		}
		return p.Desk[idx], nil
	default:
		return nil, fmt.Errorf("%w: bad character reference %q", ErrIllegalAction, ref)
	}
}

// Apply performs one action.
func (g *Game) Apply(a Action) (rules.Outcome, error) {
	g.logger.Debug("applying action", zap.Stringer("action", a), zap.Int("player_id", g.current))

	target, err := g.Resolve(a.Target)
	if err != nil {
		return rules.Outcome{}, err
	}

	switch a.Type {
	case ActionStart:
		return g.Start()
	case ActionSummon:
		return g.Summon(a.Hand, a.Index, target)
	case ActionSpell:
		return g.PlaySpell(a.Hand, target)
	case ActionWeapon:
		return g.PlayWeapon(a.Hand)
	case ActionAttack:
		source, err := g.Resolve(a.Source)
		if err != nil {
			return rules.Outcome{}, err
		}
		return g.Attack(source, target)
	case ActionEndTurn:
		return g.EndTurn()
	default:
		return rules.Outcome{}, fmt.Errorf("%w: unknown action type %q", ErrIllegalAction, a.Type)
	}
}

// Play applies actions in order and stops at the first error or when the
// game ends.
func (g *Game) Play(actions []Action) (rules.Outcome, error) {
	for i, a := range actions {
		out, err := g.Apply(a)
		if err != nil {
			return out, fmt.Errorf("action %d %s: %w", i, a.Type, err)
		}
		if out.Terminated {
			return out, nil
		}
	}
	return rules.Outcome{}, nil
}
