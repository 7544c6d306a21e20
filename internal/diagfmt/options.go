package diagfmt

// PrettyOpts управляет человекочитаемым выводом диагностик.
type PrettyOpts struct {
	// Color включает ANSI-цвета.
	Color bool
	// WithNotes печатает заметки под каждой диагностикой.
	WithNotes bool
}
