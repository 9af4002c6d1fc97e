package players

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minaorangina/thegame/game"
)

const retries = 3

// LineReader hands out the lines of one input to whichever seat asks next.
// Seats sharing a terminal must share one LineReader.
type LineReader struct {
	in    io.Reader
	once  sync.Once
	lines chan string
}

func NewLineReader(in io.Reader) *LineReader {
	return &LineReader{in: in, lines: make(chan string)}
}

// Lines starts reading on first use. The channel is closed when the input ends.
func (r *LineReader) Lines() <-chan string {
	r.once.Do(func() {
		go func() {
			defer close(r.lines)
			scanner := bufio.NewScanner(r.in)
			for scanner.Scan() {
				r.lines <- scanner.Text()
			}
		}()
	})
	return r.lines
}

// CLISeat asks a person at a terminal what to play. When they don't answer
// in time, or keep giving invalid answers, a HintSeat chooses instead.
type CLISeat struct {
	name     string
	in       *LineReader
	out      io.Writer
	timeout  time.Duration
	fallback HintSeat
}

func NewCLISeat(name string, in *LineReader, out io.Writer, timeout time.Duration) *CLISeat {
	return &CLISeat{
		name:     name,
		in:       in,
		out:      out,
		timeout:  timeout,
		fallback: NewHintSeat(name),
	}
}

func (s *CLISeat) Name() string {
	return s.name
}

func (s *CLISeat) Rejected(err error) {
	SendText(s.out, "\nThat's not allowed: %s\n", err.Error())
}

func (s *CLISeat) Choose(g *game.Game, self game.Player) Choice {
	lines := s.in.Lines()

	moves := game.LegalMoves(self.Hand, g.Piles)
	SendText(s.out, buildTableText(g))
	SendText(s.out, buildHandText(self))
	SendText(s.out, buildMovesText(moves, g.CurrentTurnPlays, g.MinCardsPerTurn()))

	for retriesLeft := retries; retriesLeft > 0; retriesLeft-- {
		SendText(s.out, promptText)

		select {
		case entry, ok := <-lines:
			if !ok {
				return s.fallback.Choose(g, self)
			}
			if choice, ok := parseChoice(entry, moves); ok {
				return choice
			}
			SendText(s.out, retryMoveText, entry)

		case <-time.After(s.timeout):
			SendText(s.out, timeoutText)
			return s.fallback.Choose(g, self)
		}
	}

	SendText(s.out, maxRetriesText)
	return s.fallback.Choose(g, self)
}

func parseChoice(entry string, moves []game.Move) (Choice, bool) {
	entry = strings.ToUpper(strings.TrimSpace(entry))
	if entry == endTurnKey || entry == "END" {
		return Choice{EndTurn: true}, true
	}
	if len(entry) != 1 {
		return Choice{}, false
	}
	i := int(entry[0]) - upperCaseA
	if i < 0 || i >= len(moves) {
		return Choice{}, false
	}
	return Choice{Move: moves[i]}, true
}
