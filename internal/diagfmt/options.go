package diagfmt

// PrettyOpts controls the human-readable renderer.
type PrettyOpts struct {
	// Color enables ANSI colors for severities and caret markers.
	Color bool
	// ShowSnippets renders the offending source line with a caret run
	// under the span. Needs loaded file content; bundle stubs skip it.
	ShowSnippets bool
	// ShowNotes renders secondary notes attached to a diagnostic.
	ShowNotes bool
}

// DefaultPrettyOpts matches what `sigil-arc check` prints on a terminal.
func DefaultPrettyOpts() PrettyOpts {
	return PrettyOpts{
		Color:        true,
		ShowSnippets: true,
		ShowNotes:    true,
	}
}

// JSONOpts controls the machine-readable renderer.
type JSONOpts struct {
	// IncludeNotes carries secondary notes into the payload.
	IncludeNotes bool
}

func DefaultJSONOpts() JSONOpts {
	return JSONOpts{IncludeNotes: true}
}
