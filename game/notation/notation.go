// Package notation parses the short commands typed at the terminal and turns
// engine locations back into the tokens a player would type.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/solitaire/game/engine"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadLocation    = errors.New("unknown pile")
	ErrBadCount       = errors.New("count must be a positive number")
	ErrMoveUsage      = errors.New("usage: m <source> <destination> [count]")
)

// CommandKind identifies a terminal command
type CommandKind int

const (
	CmdDraw CommandKind = iota
	CmdMove
	CmdUndo
	CmdRedo
	CmdAutocomplete
	CmdHint
	CmdQuit
	CmdHelp
)

var commandNames = map[CommandKind]string{
	CmdDraw:         "draw",
	CmdMove:         "move",
	CmdUndo:         "undo",
	CmdRedo:         "redo",
	CmdAutocomplete: "autocomplete",
	CmdHint:         "hint",
	CmdQuit:         "quit",
	CmdHelp:         "help",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "command(" + strconv.Itoa(int(k)) + ")"
}

// Command is a parsed terminal command. Move is only set for CmdMove.
type Command struct {
	Kind CommandKind
	Move engine.Move
}

var verbs = map[string]CommandKind{
	"p": CmdDraw, "d": CmdDraw, "draw": CmdDraw,
	"m": CmdMove, "move": CmdMove,
	"u": CmdUndo, "undo": CmdUndo,
	"r": CmdRedo, "redo": CmdRedo,
	"a": CmdAutocomplete, "auto": CmdAutocomplete, "autocomplete": CmdAutocomplete,
	"h": CmdHint, "hint": CmdHint,
	"q": CmdQuit, "quit": CmdQuit, "exit": CmdQuit,
	"?": CmdHelp, "help": CmdHelp,
}

var suitAliases = map[string]engine.Suit{
	"h": engine.Hearts, "hearts": engine.Hearts, "♥": engine.Hearts,
	"d": engine.Diamonds, "diamonds": engine.Diamonds, "♦": engine.Diamonds,
	"c": engine.Clubs, "clubs": engine.Clubs, "♣": engine.Clubs,
	"sp": engine.Spades, "spades": engine.Spades, "♠": engine.Spades,
}

var suitLetters = map[engine.Suit]string{
	engine.Hearts:   "h",
	engine.Diamonds: "d",
	engine.Clubs:    "c",
	engine.Spades:   "s",
}

// ParseCommand parses one line of input. Verbs and piles are case-insensitive.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	kind, ok := verbs[fields[0]]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	if kind != CmdMove {
		return Command{Kind: kind}, nil
	}

	if len(fields) < 3 || len(fields) > 4 {
		return Command{}, ErrMoveUsage
	}
	src, err := ParseLocation(fields[1])
	if err != nil {
		return Command{}, err
	}
	dst, err := ParseLocation(fields[2])
	if err != nil {
		return Command{}, err
	}

	count := 1
	if len(fields) == 4 {
		count, err = strconv.Atoi(fields[3])
		if err != nil || count < 1 {
			return Command{}, fmt.Errorf("%w: %q", ErrBadCount, fields[3])
		}
	}

	return Command{Kind: CmdMove, Move: engine.Move{From: src, To: dst, Count: count}}, nil
}

// ParseLocation accepts the shorthand a player types as well as the canonical
// engine form:
//
//	waste:      w, waste, s, "waste"
//	tableau:    1-7, t1-t7, tableau1-tableau7, tableau:1
//	foundation: h d c sp, full suit names, fh fd fc fs, f_<suit>, foundation_<suit>, foundation:<suit>
func ParseLocation(token string) (engine.Location, error) {
	token = strings.ToLower(strings.TrimSpace(token))

	switch token {
	case "w", "waste", "s":
		return engine.Waste(), nil
	}

	if strings.Contains(token, ":") {
		loc, err := engine.ParseLocation(token)
		if err != nil {
			return engine.Location{}, fmt.Errorf("%w: %v", ErrBadLocation, err)
		}
		return loc, nil
	}

	if n, ok := columnNumber(token); ok {
		return engine.Tableau(n), nil
	}

	if suit, ok := suitAliases[token]; ok {
		return engine.Foundation(suit), nil
	}
	for _, prefix := range []string{"foundation_", "f_", "f"} {
		if rest, found := strings.CutPrefix(token, prefix); found {
			if suit, ok := suitAliases[rest]; ok {
				return engine.Foundation(suit), nil
			}
			if rest == "s" {
				return engine.Foundation(engine.Spades), nil
			}
		}
	}

	return engine.Location{}, fmt.Errorf("%w: %q", ErrBadLocation, token)
}

func columnNumber(token string) (int, bool) {
	for _, prefix := range []string{"tableau", "t"} {
		if rest, found := strings.CutPrefix(token, prefix); found {
			token = rest
			break
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > engine.NumTableau {
		return 0, false
	}
	return n, true
}

// FormatLocation returns the shortest token ParseLocation maps back to l
func FormatLocation(l engine.Location) string {
	switch l.Kind() {
	case engine.LocationWaste:
		return "w"
	case engine.LocationTableau:
		return strconv.Itoa(l.Column())
	case engine.LocationFoundation:
		return "f" + suitLetters[l.Suit()]
	}
	return "?"
}

// FormatMove renders a move as the command that would replay it
func FormatMove(m engine.Move) string {
	s := "m " + FormatLocation(m.From) + " " + FormatLocation(m.To)
	if m.Count > 1 {
		s += " " + strconv.Itoa(m.Count)
	}
	return s
}

// Help lists the commands understood by ParseCommand
const Help = `Commands:
  p              draw from the stock (recycles the waste when empty)
  m SRC DST [N]  move N cards (default 1) from SRC to DST
  u / r          undo (costs 15 points) / redo
  a              autocomplete once every card is face-up
  h              show hints
  q              quit
Piles: w (waste), 1-7 (tableau), fh fd fc fs (foundations)`
