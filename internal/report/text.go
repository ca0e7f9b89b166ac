package report

import (
	"io"

	"github.com/fatih/color"
)

// TextFormatter prints one line per entry, colored by outcome.
type TextFormatter struct {
	colors map[string]*color.Color
}

func NewTextFormatter(noColor bool) *TextFormatter {
	f := &TextFormatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
		},
	}
	if noColor {
		for _, c := range f.colors {
			c.DisableColor()
		}
	}
	return f
}

func (f *TextFormatter) Name() string {
	return "text"
}

func (f *TextFormatter) Format(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		var err error
		switch {
		case e.Error != "":
			_, err = f.colors["yellow"].Fprintf(w, "%s: %s\n", e.Number, e.Error)
		case e.Valid:
			_, err = f.colors["green"].Fprintf(w, "%s is valid (%s)\n", e.Number, e.CardType)
		default:
			_, err = f.colors["red"].Fprintf(w, "%s is not valid\n", e.Number)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
