package handlers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/hearthstone-go/internal/game/rules"
)

type stubSession struct {
	engine  *rules.Engine
	players []*rules.Player
	current int
	stamp   int
	cards   map[string]func(int) rules.Card
}

func newStubSession(t *testing.T, opts ...rules.Option) *stubSession {
	t.Helper()
	return &stubSession{
		engine:  rules.NewEngine(zaptest.NewLogger(t), opts...),
		players: []*rules.Player{rules.NewPlayer(0, 30), rules.NewPlayer(1, 30)},
		cards:   map[string]func(int) rules.Card{},
	}
}

func (s *stubSession) Engine() *rules.Engine        { return s.engine }
func (s *stubSession) Player(id int) *rules.Player  { return s.players[id] }
func (s *stubSession) Players() []*rules.Player     { return s.players }
func (s *stubSession) CurrentPlayerID() int         { return s.current }
func (s *stubSession) AdvanceTurn() int             { s.current = 1 - s.current; return s.current }
func (s *stubSession) NextSummonStamp() int         { s.stamp++; return s.stamp - 1 }
func (s *stubSession) Limits() rules.Limits         { return rules.Limits{MaxDesk: 7, MaxHand: 10, MaxCrystal: 10} }

func (s *stubSession) CreateCard(identifier string, playerID int) (rules.Card, error) {
	build, ok := s.cards[identifier]
	if !ok {
		return nil, fmt.Errorf("unknown card %q", identifier)
	}
	return build(playerID), nil
}

func (s *stubSession) place(playerID int, spec rules.MinionSpec) *rules.Minion {
	m := rules.NewMinion(spec, playerID)
	m.SetLocation(rules.LocationDesk)
	p := s.players[playerID]
	p.InsertDesk(len(p.Desk), m)
	return m
}

type kindLog struct{ kinds []rules.Kind }

func (l *kindLog) Record(entry rules.Entry) { l.kinds = append(l.kinds, entry.Kind) }

func TestFreezeOnDamage(t *testing.T) {
	s := newStubSession(t)
	elemental := s.place(0, rules.MinionSpec{Name: "water_elemental", Attack: 3, Health: 6})
	other := s.place(0, rules.MinionSpec{Name: "wisp", Attack: 1, Health: 1})
	yeti := s.place(1, rules.MinionSpec{Name: "chillwind_yeti", Attack: 4, Health: 5})
	s.engine.RegisterHandler(FreezeOnDamage(elemental))

	_, err := s.engine.Run(s, rules.NewDamage(other, yeti, 1))
	require.NoError(t, err)
	assert.False(t, yeti.Frozen())

	_, err = s.engine.Run(s, rules.NewDamage(elemental, yeti, 3))
	require.NoError(t, err)
	assert.True(t, yeti.Frozen())
	assert.Equal(t, 1, yeti.Health())
}

func TestSpellPowerAccumulatesRegardlessOfRegistrationOrder(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		t.Run(fmt.Sprintf("reversed=%v", reversed), func(t *testing.T) {
			s := newStubSession(t)
			geomancer := s.place(0, rules.MinionSpec{Name: "kobold_geomancer", Attack: 2, Health: 2, SpellPower: 2})
			ogre := s.place(0, rules.MinionSpec{Name: "ogre_magi", Attack: 4, Health: 4})

			hs := []*rules.Handler{SpellPower(ogre, 1), OwnerSpellPower(geomancer)}
			if reversed {
				hs[0], hs[1] = hs[1], hs[0]
			}
			for _, h := range hs {
				s.engine.RegisterHandler(h)
			}

			fireball := rules.NewSpell(rules.SpellSpec{Name: "fireball", Cost: 4}, 0)
			enemy := s.players[1].Hero
			evt := rules.NewSpellDamage(fireball, enemy, 6)
			_, err := s.engine.Run(s, evt)
			require.NoError(t, err)
			assert.Equal(t, 9, evt.Value)
			assert.Equal(t, 21, enemy.Health())
		})
	}
}

func TestSpellPowerIgnoresOtherSideAndPlainDamage(t *testing.T) {
	s := newStubSession(t)
	geomancer := s.place(0, rules.MinionSpec{Name: "kobold_geomancer", Attack: 2, Health: 2, SpellPower: 1})
	s.engine.RegisterHandler(SpellPowerFactory(1)(geomancer))

	enemySpell := rules.NewSpell(rules.SpellSpec{Name: "moonfire"}, 1)
	_, err := s.engine.Run(s, rules.NewSpellDamage(enemySpell, s.players[0].Hero, 1))
	require.NoError(t, err)
	assert.Equal(t, 29, s.players[0].Hero.Health())

	_, err = s.engine.Run(s, rules.NewDamage(geomancer, s.players[1].Hero, 2))
	require.NoError(t, err)
	assert.Equal(t, 28, s.players[1].Hero.Health())
}

func TestTurnBeginDraw(t *testing.T) {
	s := newStubSession(t)
	card := rules.NewMinion(rules.MinionSpec{Name: "wisp", Attack: 1, Health: 1}, 1)
	s.players[1].Deck = []rules.Card{card}
	s.engine.RegisterHandler(TurnBeginDraw())

	_, err := s.engine.Run(s, rules.NewTurnBegin(1))
	require.NoError(t, err)
	assert.Equal(t, []rules.Card{card}, s.players[1].Hand)
}

func TestCreateCoinGoesAheadOfQueuedEvents(t *testing.T) {
	log := &kindLog{}
	s := newStubSession(t, rules.WithRecorder(log))
	s.cards["coin"] = func(playerID int) rules.Card {
		return rules.NewSpell(rules.SpellSpec{Name: "coin"}, playerID)
	}
	hero := s.players[0].Hero
	s.engine.RegisterHandler(&rules.Handler{
		Kinds: []rules.Kind{rules.KindGameBegin},
		Phase: rules.PhaseAfter,
		Process: func(s rules.Session, _ *rules.Event) error {
			s.Engine().Enqueue(rules.NewFreeze(hero))
			return nil
		},
	})
	s.engine.RegisterHandler(CreateCoin("coin"))

	_, err := s.engine.Run(s, rules.NewGameBegin(), rules.NewGameBegin())
	require.NoError(t, err)

	hand := s.players[1].Hand
	require.Len(t, hand, 1)
	assert.Equal(t, "coin", hand[0].Name())
	assert.Empty(t, s.players[0].Hand)
	assert.Equal(t, []rules.Kind{
		rules.KindGameBegin, rules.KindAddCardToHand, rules.KindFreeze,
		rules.KindGameBegin, rules.KindFreeze,
	}, log.kinds)
}

func TestComboStampsPlayEvents(t *testing.T) {
	s := newStubSession(t)
	s.engine.RegisterHandler(Combo())
	p := s.players[0]
	p.RemainCrystal = 10

	var combos []bool
	script := func(_ rules.Session, _ *rules.Spell, pc rules.PlayContext) error {
		combos = append(combos, pc.Combo)
		return nil
	}
	first := rules.NewSpell(rules.SpellSpec{Name: "backstab", Play: script}, 0)
	second := rules.NewSpell(rules.SpellSpec{Name: "eviscerate", Cost: 2, Play: script}, 0)
	p.Hand = []rules.Card{first, second}

	firstPlay := rules.NewPlaySpell(first, 0, nil)
	secondPlay := rules.NewPlaySpell(second, 0, nil)
	_, err := s.engine.Run(s, firstPlay, secondPlay)
	require.NoError(t, err)

	assert.False(t, firstPlay.Combo)
	assert.True(t, secondPlay.Combo)
	assert.Equal(t, []bool{false, true}, combos)
	assert.Equal(t, 2, p.CardsPlayed)

	_, err = s.engine.Run(s, rules.NewTurnBegin(0))
	require.NoError(t, err)
	assert.Equal(t, 0, p.CardsPlayed)
}

func TestGlobalsOrder(t *testing.T) {
	names := []string{}
	for _, h := range Globals("coin") {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"turn_begin_draw", "create_coin", "combo"}, names)
}
