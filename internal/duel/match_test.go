package duel

import (
	"testing"
	"time"

	"github.com/vovakirdan/merge-duel/internal/board"
	"github.com/vovakirdan/merge-duel/internal/effect"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMatch() *Match {
	return NewActive("room-1", testTime, effect.DefaultThresholds(), "s1", "alice", "s2", "bob")
}

// setBoard replaces a session's board with a crafted grid, reusing the
// match's identity arena.
func setBoard(t *testing.T, m *Match, session SessionID, tiles []board.Tile) {
	t.Helper()
	st, ok := m.State(session)
	if !ok {
		t.Fatalf("no state for session %s", session)
	}
	b := make(board.Board, 0, len(tiles))
	for _, tile := range tiles {
		tile.ID = m.ids.Next()
		b = append(b, tile)
	}
	st.Board = b
}

func TestSeedDeterministic(t *testing.T) {
	if Seed("room-1", testTime) != Seed("room-1", testTime) {
		t.Error("same room and time produced different seeds")
	}
	if Seed("room-1", testTime) == Seed("room-2", testTime) {
		t.Error("different rooms produced the same seed")
	}
}

func TestNewActiveDealsBothBoards(t *testing.T) {
	m := newTestMatch()

	if m.Phase() != PhaseActive {
		t.Fatalf("Phase = %v, want PhaseActive", m.Phase())
	}
	for _, s := range []SessionID{"s1", "s2"} {
		st, ok := m.State(s)
		if !ok {
			t.Fatalf("no state for %s", s)
		}
		if len(st.Board) != 2 {
			t.Errorf("session %s dealt %d tiles, want 2", s, len(st.Board))
		}
	}
}

func TestMatchIsReplayable(t *testing.T) {
	a := newTestMatch()
	b := newTestMatch()

	dirs := []board.Direction{board.Left, board.Up, board.Right, board.Down}
	for i, dir := range dirs {
		session := SessionID("s1")
		if i%2 == 1 {
			session = "s2"
		}
		a.ApplyInput(session, dir)
		b.ApplyInput(session, dir)
	}

	for _, s := range []SessionID{"s1", "s2"} {
		sa, _ := a.State(s)
		sb, _ := b.State(s)
		if sa.Score != sb.Score {
			t.Errorf("replay diverged for %s: score %d vs %d", s, sa.Score, sb.Score)
		}
		if len(sa.Board) != len(sb.Board) {
			t.Fatalf("replay diverged for %s: %d vs %d tiles", s, len(sa.Board), len(sb.Board))
		}
		for i := range sa.Board {
			if sa.Board[i] != sb.Board[i] {
				t.Errorf("replay diverged for %s at tile %d", s, i)
			}
		}
	}
}

func TestJoinLifecycle(t *testing.T) {
	m := NewForming("room-f", testTime, effect.DefaultThresholds(), "s1", "alice")

	if m.Phase() != PhaseForming {
		t.Fatalf("Phase = %v, want PhaseForming", m.Phase())
	}
	if !m.Join("s2", "bob") {
		t.Fatal("Join into forming match failed")
	}
	if m.Phase() != PhaseActive {
		t.Errorf("Phase after join = %v, want PhaseActive", m.Phase())
	}
	if m.Join("s3", "carol") {
		t.Error("Join into full match succeeded")
	}

	m.Close()
	if m.Phase() != PhaseClosed {
		t.Errorf("Phase after close = %v, want PhaseClosed", m.Phase())
	}
}

func TestApplyInputTurnCounter(t *testing.T) {
	m := newTestMatch()

	for i := 1; i <= 3; i++ {
		if _, ok := m.ApplyInput("s1", board.Left); !ok {
			t.Fatalf("input %d not accepted", i)
		}
		if m.Turn != i {
			t.Errorf("Turn = %d after %d inputs", m.Turn, i)
		}
	}
}

func TestApplyInputUnknownSessionRejected(t *testing.T) {
	m := newTestMatch()

	if _, ok := m.ApplyInput("stranger", board.Left); ok {
		t.Error("input from unbound session accepted")
	}
	if m.Turn != 0 {
		t.Errorf("rejected input advanced turn to %d", m.Turn)
	}

	m.Close()
	if _, ok := m.ApplyInput("s1", board.Left); ok {
		t.Error("input against closed match accepted")
	}
}

func TestApplyInputScoreOnlyWhenMoved(t *testing.T) {
	m := newTestMatch()
	setBoard(t, m, "s1", []board.Tile{
		{Value: 2, Row: 0, Col: 0},
		{Value: 4, Row: 0, Col: 1},
		{Value: 8, Row: 0, Col: 2},
		{Value: 16, Row: 0, Col: 3},
		{Value: 32, Row: 0, Col: 4},
	})

	res, ok := m.ApplyInput("s1", board.Left)
	if !ok {
		t.Fatal("input not accepted")
	}
	if res.Moved {
		t.Error("blocked move reported Moved=true")
	}
	st, _ := m.State(SessionID("s1"))
	if st.Score != 0 {
		t.Errorf("blocked move changed score to %d", st.Score)
	}
	if m.Turn != 1 {
		t.Errorf("Turn = %d, want 1 (accepted input always advances)", m.Turn)
	}
}

func TestApplyInputBigMergeObstructsOpponent(t *testing.T) {
	m := newTestMatch()
	setBoard(t, m, "s1", []board.Tile{
		{Value: 256, Row: 0, Col: 0},
		{Value: 256, Row: 0, Col: 1},
	})

	res, ok := m.ApplyInput("s1", board.Left)
	if !ok {
		t.Fatal("input not accepted")
	}
	if res.MergedMax != 512 {
		t.Fatalf("MergedMax = %d, want 512", res.MergedMax)
	}
	if len(res.Effects) != 1 || res.Effects[0].Type != effect.TypeAddHard {
		t.Fatalf("Effects = %+v, want one addHard", res.Effects)
	}

	opp, _ := m.State(SessionID("s2"))
	hard := 0
	for _, tile := range opp.Board {
		if tile.Kind == board.KindBlockHard {
			hard++
		}
	}
	if hard != 1 {
		t.Errorf("opponent board has %d hard blocks, want 1", hard)
	}

	me, _ := m.State(SessionID("s1"))
	if me.MaxTile != 512 {
		t.Errorf("mover MaxTile = %d, want 512", me.MaxTile)
	}
	if me.Score != 512 {
		t.Errorf("mover Score = %d, want 512", me.Score)
	}
}

func TestApplyInputSmallMergeLeavesOpponentAlone(t *testing.T) {
	m := newTestMatch()
	setBoard(t, m, "s1", []board.Tile{
		{Value: 2, Row: 0, Col: 0},
		{Value: 2, Row: 0, Col: 1},
	})
	oppBefore, _ := m.State(SessionID("s2"))
	tilesBefore := len(oppBefore.Board)

	res, _ := m.ApplyInput("s1", board.Left)
	if res.Effects[0].Type != effect.TypeNone {
		t.Errorf("effect type = %s, want none", res.Effects[0].Type)
	}

	oppAfter, _ := m.State(SessionID("s2"))
	if len(oppAfter.Board) != tilesBefore {
		t.Errorf("opponent board changed on a small merge: %d -> %d tiles", tilesBefore, len(oppAfter.Board))
	}
}

func TestRebindKeepsPlayerState(t *testing.T) {
	m := newTestMatch()
	st, _ := m.State(SessionID("s1"))
	st.Score = 99

	if !m.Rebind("s1", "s1b") {
		t.Fatal("Rebind failed")
	}
	if m.HasSession("s1") {
		t.Error("stale session still bound")
	}
	rebound, ok := m.State(SessionID("s1b"))
	if !ok {
		t.Fatal("new session not bound")
	}
	if rebound.Score != 99 {
		t.Errorf("rebound score = %d, want 99", rebound.Score)
	}
	if m.SlotOf("alice") != 0 {
		t.Errorf("SlotOf(alice) = %d, want 0", m.SlotOf("alice"))
	}
	if m.SessionAt(0) != "s1b" {
		t.Errorf("SessionAt(0) = %s, want s1b", m.SessionAt(0))
	}

	if m.Rebind("s1", "s1c") {
		t.Error("Rebind of unbound session succeeded")
	}
}

func TestSnapshotFor(t *testing.T) {
	m := newTestMatch()
	s1, _ := m.State(SessionID("s1"))
	s1.Score = 10
	s2, _ := m.State(SessionID("s2"))
	s2.Score = 20

	snap := m.SnapshotFor("s1", nil)
	if snap.You.Score != 10 {
		t.Errorf("You.Score = %d, want 10", snap.You.Score)
	}
	if snap.Opp == nil || snap.Opp.Score != 20 {
		t.Errorf("Opp = %+v, want score 20", snap.Opp)
	}

	// Forming rooms have no opponent view yet.
	f := NewForming("room-f", testTime, effect.DefaultThresholds(), "s9", "carol")
	if snap := f.SnapshotFor("s9", nil); snap.Opp != nil {
		t.Error("forming snapshot has an opponent view")
	}
}

func TestResultNow(t *testing.T) {
	m := newTestMatch()
	s1, _ := m.State(SessionID("s1"))
	s1.Score = 40
	s1.MaxTile = 32
	s2, _ := m.State(SessionID("s2"))
	s2.Score = 12
	m.Turn = 7

	r := m.ResultNow("s1", "forfeit", testTime.Add(90*time.Second))
	if r.Winner != "alice" {
		t.Errorf("Winner = %s, want alice", r.Winner)
	}
	if r.EndReason != "forfeit" {
		t.Errorf("EndReason = %s, want forfeit", r.EndReason)
	}
	if r.Turns != 7 {
		t.Errorf("Turns = %d, want 7", r.Turns)
	}
	if r.Duration != 90*time.Second {
		t.Errorf("Duration = %s, want 90s", r.Duration)
	}
	if len(r.Players) != 2 || r.Scores[0] != 40 || r.MaxTiles[0] != 32 || r.Scores[1] != 12 {
		t.Errorf("unexpected result payload: %+v", r)
	}

	draw := m.ResultNow("", "stuck", testTime.Add(time.Minute))
	if draw.Winner != "" {
		t.Errorf("draw Winner = %s, want empty", draw.Winner)
	}
}
