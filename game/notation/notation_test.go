package notation

import (
	"errors"
	"testing"

	"github.com/wricardo/solitaire/game/engine"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		token    string
		expected engine.Location
	}{
		{"w", engine.Waste()},
		{"WASTE", engine.Waste()},
		{"s", engine.Waste()},
		{"3", engine.Tableau(3)},
		{"t7", engine.Tableau(7)},
		{"tableau1", engine.Tableau(1)},
		{"tableau:5", engine.Tableau(5)},
		{"h", engine.Foundation(engine.Hearts)},
		{"diamonds", engine.Foundation(engine.Diamonds)},
		{"fc", engine.Foundation(engine.Clubs)},
		{"fs", engine.Foundation(engine.Spades)},
		{"sp", engine.Foundation(engine.Spades)},
		{"f_hearts", engine.Foundation(engine.Hearts)},
		{"foundation_spades", engine.Foundation(engine.Spades)},
		{"foundation:clubs", engine.Foundation(engine.Clubs)},
		{" 2 ", engine.Tableau(2)},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseLocation(tt.token)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	for _, token := range []string{"", "0", "8", "t9", "stock", "foundation_stars", "tableau:9", "x"} {
		if _, err := ParseLocation(token); !errors.Is(err, ErrBadLocation) {
			t.Errorf("Expected ErrBadLocation for %q, got %v", token, err)
		}
	}
}

func TestParseCommand(t *testing.T) {
	t.Run("SimpleVerbs", func(t *testing.T) {
		tests := map[string]CommandKind{
			"p":    CmdDraw,
			"U":    CmdUndo,
			"redo": CmdRedo,
			"a":    CmdAutocomplete,
			"h":    CmdHint,
			"q":    CmdQuit,
			"?":    CmdHelp,
		}
		for line, kind := range tests {
			cmd, err := ParseCommand(line)
			if err != nil {
				t.Fatalf("%q: unexpected error: %v", line, err)
			}
			if cmd.Kind != kind {
				t.Errorf("%q: expected %s, got %s", line, kind, cmd.Kind)
			}
		}
	})

	t.Run("Move", func(t *testing.T) {
		cmd, err := ParseCommand("m 2 5 3")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := engine.Move{From: engine.Tableau(2), To: engine.Tableau(5), Count: 3}
		if cmd.Kind != CmdMove || cmd.Move != want {
			t.Errorf("Expected %s, got %s", want, cmd.Move)
		}
	})

	t.Run("MoveDefaultsToOneCard", func(t *testing.T) {
		cmd, err := ParseCommand("m waste foundation_hearts")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cmd.Move.Count != 1 {
			t.Errorf("Expected count 1, got %d", cmd.Move.Count)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			line string
			want error
		}{
			{"   ", ErrEmptyCommand},
			{"jump", ErrUnknownCommand},
			{"m 1", ErrMoveUsage},
			{"m 1 2 3 4", ErrMoveUsage},
			{"m 1 9", ErrBadLocation},
			{"m 1 2 zero", ErrBadCount},
			{"m 1 2 0", ErrBadCount},
		}
		for _, tt := range tests {
			if _, err := ParseCommand(tt.line); !errors.Is(err, tt.want) {
				t.Errorf("%q: expected %v, got %v", tt.line, tt.want, err)
			}
		}
	})
}

func TestFormatLocationParsesBack(t *testing.T) {
	locs := []engine.Location{engine.Waste()}
	for n := 1; n <= engine.NumTableau; n++ {
		locs = append(locs, engine.Tableau(n))
	}
	for _, s := range engine.Suits {
		locs = append(locs, engine.Foundation(s))
	}

	for _, l := range locs {
		parsed, err := ParseLocation(FormatLocation(l))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", l, err)
		}
		if parsed != l {
			t.Errorf("Expected %s, got %s", l, parsed)
		}
	}
}

func TestFormatMove(t *testing.T) {
	m := engine.Move{From: engine.Waste(), To: engine.Foundation(engine.Diamonds), Count: 1}
	if got := FormatMove(m); got != "m w fd" {
		t.Errorf("Expected 'm w fd', got %q", got)
	}
	m = engine.Move{From: engine.Tableau(4), To: engine.Tableau(1), Count: 2}
	if got := FormatMove(m); got != "m 4 1 2" {
		t.Errorf("Expected 'm 4 1 2', got %q", got)
	}
}
