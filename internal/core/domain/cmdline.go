package domain

import "strings"

// TemplateInput is one input dependency fed to the argument template.
// A listing input expands into its discovered files; a plain input
// contributes its name.
type TemplateInput struct {
	Name    string
	Files   []string
	Listing bool
}

// Argument template markers. A token ending in an input marker expands
// into the full input list; a token ending in an output marker expands
// into the output name. The quoted forms wrap each expanded entry in
// double quotes. Literal text preceding the marker is repeated as a
// prefix on every expanded entry.
const (
	markerInputs       = "%1"
	markerInputsQuoted = `"%1"`
	markerOutput       = "%2"
	markerOutputQuoted = `"%2"`
)

// BuildCommandLine expands an argument template into a full command line.
// The template is tokenized on whitespace and tokens are re-joined with
// single spaces; the result carries a trailing space.
//
// Expansion is stable and order-preserving: inputs expand in dependency
// order, and listing inputs expand in the order the listing provides.
func BuildCommandLine(template string, inputs []TemplateInput, output string) string {
	var b strings.Builder

	for _, token := range strings.Fields(template) {
		switch {
		case strings.HasSuffix(token, markerInputsQuoted):
			// /Option:"%1" -> /Option:"A" /Option:"B"
			// The prefix keeps the opening quote; each entry is closed with one.
			pre := token[:len(token)-3]
			appendInputs(&b, pre, `"`, inputs)

		case strings.HasSuffix(token, markerInputs):
			// /Option:%1 -> /Option:A /Option:B
			pre := token[:len(token)-2]
			appendInputs(&b, pre, "", inputs)

		case strings.HasSuffix(token, markerOutputQuoted):
			// /Option:"%2" -> /Option:"out"
			b.WriteString(token[:len(token)-3])
			b.WriteString(output)
			b.WriteByte('"')

		case strings.HasSuffix(token, markerOutput):
			// /Option:%2 -> /Option:out
			b.WriteString(token[:len(token)-2])
			b.WriteString(output)

		default:
			b.WriteString(token)
		}

		b.WriteByte(' ')
	}

	return b.String()
}

// appendInputs writes every input entry, space separated, each wrapped
// in pre/post. No separator is duplicated between expanded entries.
func appendInputs(b *strings.Builder, pre, post string, inputs []TemplateInput) {
	first := true
	write := func(name string) {
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(pre)
		b.WriteString(name)
		b.WriteString(post)
		first = false
	}

	for _, input := range inputs {
		if input.Listing {
			for _, file := range input.Files {
				write(file)
			}
			continue
		}
		write(input.Name)
	}
}

// SplitCommandLine splits a full command line into argv entries.
// Double quotes group words containing whitespace and are removed;
// a backslash escapes a following quote.
func SplitCommandLine(commandLine string) []string {
	var args []string
	var cur strings.Builder
	inWord := false
	inQuote := false

	flush := func() {
		if inWord {
			args = append(args, cur.String())
			cur.Reset()
			inWord = false
		}
	}

	for i := 0; i < len(commandLine); i++ {
		c := commandLine[i]
		switch {
		case c == '\\' && i+1 < len(commandLine) && commandLine[i+1] == '"':
			cur.WriteByte('"')
			inWord = true
			i++
		case c == '"':
			inQuote = !inQuote
			inWord = true // an empty quoted pair still yields an argument
		case (c == ' ' || c == '\t') && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	flush()

	return args
}
