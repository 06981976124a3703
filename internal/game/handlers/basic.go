package handlers

import (
	"github.com/magefree/hearthstone-go/internal/game/rules"
)

// TurnBeginDraw makes the player whose turn begins draw a card.
func TurnBeginDraw() *rules.Handler {
	return &rules.Handler{
		Name:  "turn_begin_draw",
		Kinds: []rules.Kind{rules.KindTurnBegin},
		Phase: rules.PhaseAfter,
		Process: func(s rules.Session, evt *rules.Event) error {
			s.Engine().Enqueue(rules.NewDrawCard(evt.PlayerID))
			return nil
		},
	}
}

// CreateCoin gives the player going second the named coin card at game
// start. The coin is added ahead of anything already queued.
func CreateCoin(identifier string) *rules.Handler {
	return &rules.Handler{
		Name:  "create_coin",
		Kinds: []rules.Kind{rules.KindGameBegin},
		Phase: rules.PhaseAfter,
		Once:  true,
		Process: func(s rules.Session, evt *rules.Event) error {
			n := len(s.Players())
			if n == 0 {
				return nil
			}
			second := (s.CurrentPlayerID() + 1) % n
			s.Engine().EnqueueFront(rules.NewAddCardToHandByID(identifier, second))
			return nil
		},
	}
}

// Combo tracks how many cards the active player played this turn and stamps
// every play event with whether combo was active when it was played.
func Combo() *rules.Handler {
	return &rules.Handler{
		Name: "combo",
		Kinds: []rules.Kind{
			rules.KindPlayCard,
			rules.KindSummonMinion,
			rules.KindPlaySpell,
			rules.KindPlayWeapon,
			rules.KindTurnBegin,
		},
		Phase: rules.PhaseBefore,
		Process: func(s rules.Session, evt *rules.Event) error {
			p := s.Player(evt.PlayerID)
			if p == nil {
				return nil
			}
			if evt.Kind == rules.KindTurnBegin {
				p.CardsPlayed = 0
				return nil
			}
			evt.Combo = p.ComboActive()
			p.CardsPlayed++
			return nil
		},
	}
}

// Globals returns the handlers every game registers at start, in
// registration order.
func Globals(coinIdentifier string) []*rules.Handler {
	return []*rules.Handler{
		TurnBeginDraw(),
		CreateCoin(coinIdentifier),
		Combo(),
	}
}
