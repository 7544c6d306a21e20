package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"oxcheck/internal/diag"
	"oxcheck/internal/ir"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <func>:<stmt>: <SEV> <CODE>: <Message>
// затем Notes с отступом. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, program *ir.Program, opts PrettyOpts) {
	if bag == nil || bag.Len() == 0 {
		return
	}

	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	infoColor := color.New(color.FgCyan)
	noteColor := color.New(color.FgHiBlack)
	if !opts.Color {
		for _, c := range []*color.Color{errColor, warnColor, infoColor, noteColor} {
			c.DisableColor()
		}
	}

	// Выравниваем колонку позиций; runewidth учитывает не-ASCII имена функций.
	items := bag.Items()
	locWidth := 0
	for i := range items {
		if w := runewidth.StringWidth(location(program, items[i].Primary)); w > locWidth {
			locWidth = w
		}
	}

	for i := range items {
		d := &items[i]
		loc := location(program, d.Primary)
		pad := strings.Repeat(" ", locWidth-runewidth.StringWidth(loc))
		sev := d.Severity.String()
		switch d.Severity {
		case diag.SevError:
			sev = errColor.Sprint(sev)
		case diag.SevWarning:
			sev = warnColor.Sprint(sev)
		default:
			sev = infoColor.Sprint(sev)
		}
		fmt.Fprintf(w, "%s:%s %s %s: %s\n", loc, pad, sev, d.Code, d.Message)
		if !opts.WithNotes {
			continue
		}
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", noteColor.Sprint("note"), location(program, note.Pos), note.Msg)
		}
	}
}

func location(program *ir.Program, pos ir.Pos) string {
	return fmt.Sprintf("%s:%d", program.FuncName(pos.Func), pos.Stmt)
}
