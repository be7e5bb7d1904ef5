package ai

import (
    "errors"
    "math/rand"
    "testing"

    "github.com/jaminalder/dots-and-boxes/internal/domain"
)

var tiers = []Difficulty{Easy, Medium, Hard}

// helper to build a ledger with the given lines claimed by player 1
func ledgerWith(t *testing.T, rows, cols int, lines ...domain.Line) *domain.Ledger {
    t.Helper()
    g, err := domain.NewGrid(rows, cols)
    if err != nil {
        t.Fatalf("grid: %v", err)
    }
    l := domain.NewLedger(g)
    for _, ln := range lines {
        if _, err := l.Claim(ln, domain.Player1); err != nil {
            t.Fatalf("claim %v: %v", ln, err)
        }
    }
    return l
}

func choose(t *testing.T, seed int64, l *domain.Ledger, d Difficulty) domain.Line {
    t.Helper()
    m, err := New(rand.NewSource(seed)).ChooseMove(l, d, domain.Player2)
    if err != nil {
        t.Fatalf("ChooseMove(%v) failed: %v", d, err)
    }
    return m
}

func TestEveryTierTakesCompletingMove(t *testing.T) {
    // box (0,0) has three sides; plenty of safe lines remain elsewhere
    l := ledgerWith(t, 3, 3, domain.H(0, 0), domain.H(1, 0), domain.V(0, 0))
    for _, d := range tiers {
        for seed := int64(0); seed < 20; seed++ {
            if m := choose(t, seed, l, d); m != domain.V(0, 1) {
                t.Fatalf("%v seed %d: expected v-0-1, got %v", d, seed, m)
            }
        }
    }
}

func TestCompletingMoveFirstInEnumerationOrder(t *testing.T) {
    // box (0,0) misses h-1-0, box (1,1) misses v-1-1; horizontals come first
    l := ledgerWith(t, 2, 2,
        domain.H(0, 0), domain.V(0, 0), domain.V(0, 1),
        domain.H(1, 1), domain.H(2, 1), domain.V(1, 2),
    )
    for _, d := range tiers {
        if m := choose(t, 1, l, d); m != domain.H(1, 0) {
            t.Fatalf("%v: expected h-1-0, got %v", d, m)
        }
    }
}

func TestMediumAndHardPreferSafeMoves(t *testing.T) {
    // 1x2: box (0,0) has two sides, box (0,1) one
    l := ledgerWith(t, 1, 2, domain.H(0, 0), domain.H(0, 1), domain.H(1, 0))
    safe := map[domain.Line]bool{domain.H(1, 1): true, domain.V(0, 2): true}
    for _, d := range []Difficulty{Medium, Hard} {
        for seed := int64(0); seed < 50; seed++ {
            if m := choose(t, seed, l, d); !safe[m] {
                t.Fatalf("%v seed %d: expected a safe move, got %v", d, seed, m)
            }
        }
    }
}

func TestHardMinimisesGiveaway(t *testing.T) {
    // every vertical gives one box except v-0-1, which gives two
    l := ledgerWith(t, 1, 2, domain.H(0, 0), domain.H(0, 1), domain.H(1, 0), domain.H(1, 1))
    for seed := int64(0); seed < 20; seed++ {
        m := choose(t, seed, l, Hard)
        if m == domain.V(0, 1) {
            t.Fatalf("seed %d: hard gave away two boxes", seed)
        }
        if m != domain.V(0, 0) {
            t.Fatalf("seed %d: expected first one-box line v-0-0, got %v", seed, m)
        }
    }
}

func TestMediumForcedMoveIsAnyFreeLine(t *testing.T) {
    l := ledgerWith(t, 1, 2, domain.H(0, 0), domain.H(0, 1), domain.H(1, 0), domain.H(1, 1))
    seen := make(map[domain.Line]bool)
    for seed := int64(0); seed < 200; seed++ {
        seen[choose(t, seed, l, Medium)] = true
    }
    for m := range seen {
        if l.Claimed(m) {
            t.Fatalf("medium chose claimed line %v", m)
        }
    }
    if len(seen) < 2 {
        t.Fatalf("expected random choice among forced moves, saw only %v", seen)
    }
}

func TestEasyPicksOnlyFreeLines(t *testing.T) {
    l := ledgerWith(t, 2, 2, domain.H(0, 0), domain.V(1, 2))
    for seed := int64(0); seed < 100; seed++ {
        m := choose(t, seed, l, Easy)
        if l.Claimed(m) || !l.Grid().IsValidLine(m) {
            t.Fatalf("seed %d: easy chose %v", seed, m)
        }
    }
}

func TestChooseMoveLeavesLedgerUntouched(t *testing.T) {
    l := ledgerWith(t, 2, 3, domain.H(0, 0), domain.H(1, 0), domain.V(0, 1), domain.V(1, 3))
    before := l.Entries()
    for _, d := range tiers {
        choose(t, 7, l, d)
    }
    after := l.Entries()
    if len(before) != len(after) {
        t.Fatalf("ledger size changed: %d -> %d", len(before), len(after))
    }
    for k, v := range before {
        if after[k] != v {
            t.Fatalf("entry %v changed", k)
        }
    }
}

func TestSameSeedSameMoves(t *testing.T) {
    l := ledgerWith(t, 6, 9)
    a := New(rand.NewSource(42))
    b := New(rand.NewSource(42))
    for i := 0; i < 10; i++ {
        ma, _ := a.ChooseMove(l, Medium, domain.Player2)
        mb, _ := b.ChooseMove(l, Medium, domain.Player2)
        if ma != mb {
            t.Fatalf("move %d differs: %v vs %v", i, ma, mb)
        }
    }
}

func TestNoMovesAvailable(t *testing.T) {
    g, _ := domain.NewGrid(1, 1)
    l := ledgerWith(t, 1, 1, g.Lines()...)
    for _, d := range tiers {
        if _, err := New(rand.NewSource(1)).ChooseMove(l, d, domain.Player2); !errors.Is(err, ErrNoMovesAvailable) {
            t.Fatalf("%v: expected ErrNoMovesAvailable, got %v", d, err)
        }
    }
}

func TestParseDifficulty(t *testing.T) {
    cases := map[string]Difficulty{"easy": Easy, "Medium": Medium, " HARD ": Hard}
    for in, want := range cases {
        got, err := ParseDifficulty(in)
        if err != nil || got != want {
            t.Fatalf("ParseDifficulty(%q) = %v, %v", in, got, err)
        }
        if got.String() != want.String() {
            t.Fatalf("String mismatch for %v", got)
        }
    }
    if _, err := ParseDifficulty("insane"); !errors.Is(err, ErrUnknownDifficulty) {
        t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
    }
}
