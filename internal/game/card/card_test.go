package card

import (
	"math/rand/v2"
	"testing"
)

func TestMain(m *testing.M) {
	if err := InitGlobalCatalog(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestCatalogHas52DistinctCards(t *testing.T) {
	pile := NewFullPile()
	if pile.Size() != DeckSize {
		t.Fatalf("expected %d cards, got %d", DeckSize, pile.Size())
	}

	seen := make(map[string]bool)
	for _, c := range pile {
		if seen[c.Key()] {
			t.Fatalf("duplicate card in catalog: %s", c.Key())
		}
		seen[c.Key()] = true
	}
}

func TestScoreTable(t *testing.T) {
	tests := []struct {
		key      string
		expected int
	}{
		{"2C", 2},
		{"7D", 7},
		{"10H", 10},
		{"JS", 10},
		{"QC", 10},
		{"KD", 10},
		{"AH", 1},
	}

	for _, tt := range tests {
		c, err := GetCard(tt.key)
		if err != nil {
			t.Fatalf("GetCard(%s): %v", tt.key, err)
		}
		if c.Score() != tt.expected {
			t.Errorf("%s: expected score %d, got %d", tt.key, tt.expected, c.Score())
		}
	}
}

func TestGetCardUnknownKey(t *testing.T) {
	for _, key := range []string{"1C", "AX", "", "A"} {
		if _, err := GetCard(key); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestCatalogCardsAreCanonical(t *testing.T) {
	a, _ := GetCard("9H")
	b, _ := GetCard("9H")
	if a != b {
		t.Fatal("expected the same pointer for the same key")
	}
}

func TestShufflePreservesCardSet(t *testing.T) {
	pile := NewFullPile()
	r := rand.New(rand.NewPCG(1, 2))
	pile.Shuffle(r)

	if pile.Size() != DeckSize {
		t.Fatalf("shuffle changed pile size: %d", pile.Size())
	}
	seen := make(map[*Card]bool)
	for _, c := range pile {
		if seen[c] {
			t.Fatalf("duplicate card after shuffle: %s", c.Key())
		}
		seen[c] = true
	}
}

func TestDrawTopAndAddCard(t *testing.T) {
	pile := NewFullPile()
	first := pile[0]

	drawn, err := pile.DrawTop()
	if err != nil {
		t.Fatalf("DrawTop: %v", err)
	}
	if drawn != first {
		t.Fatalf("expected %s from the top, got %s", first.Key(), drawn.Key())
	}
	if pile.Size() != DeckSize-1 {
		t.Fatalf("expected %d cards left, got %d", DeckSize-1, pile.Size())
	}

	var discard Pile
	discard.AddCard(drawn)
	top, err := discard.Top()
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if top != drawn {
		t.Fatal("discard top should be the last added card")
	}
}

func TestDrawTopEmptyPile(t *testing.T) {
	var empty Pile
	if _, err := empty.DrawTop(); err == nil {
		t.Fatal("expected error drawing from an empty pile")
	}
}

func TestRemoveCard(t *testing.T) {
	pile := NewFullPile()
	c, _ := GetCard("QS")

	if err := pile.RemoveCard(c); err != nil {
		t.Fatalf("RemoveCard: %v", err)
	}
	if pile.Contains(c) {
		t.Fatal("pile still contains the removed card")
	}
	if err := pile.RemoveCard(c); err == nil {
		t.Fatal("expected error removing a card twice")
	}
}
