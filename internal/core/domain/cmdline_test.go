package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/rex/internal/core/domain"
)

func inputs(names ...string) []domain.TemplateInput {
	res := make([]domain.TemplateInput, len(names))
	for i, n := range names {
		res[i] = domain.TemplateInput{Name: n}
	}
	return res
}

func TestBuildCommandLine_OutputAndInputs(t *testing.T) {
	got := domain.BuildCommandLine("-o %2 %1", inputs("a.c", "b.c"), "out.o")
	require.Equal(t, "-o out.o a.c b.c ", got)
}

func TestBuildCommandLine_PrefixPreserved(t *testing.T) {
	got := domain.BuildCommandLine("/I:%1 /Fo%2", inputs("a.c", "b.c", "c.c"), "out.obj")
	require.Equal(t, "/I:a.c /I:b.c /I:c.c /Foout.obj ", got)
}

func TestBuildCommandLine_QuotedInputs(t *testing.T) {
	got := domain.BuildCommandLine(`"%1"`, inputs("a b.c", "c.c"), "out")
	require.Equal(t, `"a b.c" "c.c" `, got)
}

func TestBuildCommandLine_QuotedInputsWithPrefix(t *testing.T) {
	got := domain.BuildCommandLine(`/Option:"%1"`, inputs("a.c", "b.c"), "out")
	require.Equal(t, `/Option:"a.c" /Option:"b.c" `, got)
}

func TestBuildCommandLine_QuotedOutput(t *testing.T) {
	got := domain.BuildCommandLine(`-o "%2"`, inputs("a.c"), "out dir/out.o")
	require.Equal(t, `-o "out dir/out.o" `, got)
}

func TestBuildCommandLine_ListingExpansion(t *testing.T) {
	ins := []domain.TemplateInput{
		{Name: "explicit.c"},
		{Files: []string{"dir/x.c", "dir/y.c"}, Listing: true},
	}
	got := domain.BuildCommandLine("%1", ins, "out")
	require.Equal(t, "explicit.c dir/x.c dir/y.c ", got)
}

func TestBuildCommandLine_EmptyListing(t *testing.T) {
	ins := []domain.TemplateInput{
		{Files: nil, Listing: true},
		{Name: "a.c"},
	}
	// No duplicated separator around the empty listing.
	got := domain.BuildCommandLine("%1", ins, "out")
	require.Equal(t, "a.c ", got)
}

func TestBuildCommandLine_PlainTokensPassThrough(t *testing.T) {
	got := domain.BuildCommandLine("-v   --flag=1", nil, "out")
	require.Equal(t, "-v --flag=1 ", got)
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "-o out.o a.c", []string{"-o", "out.o", "a.c"}},
		{"quoted", `-o "out dir/out.o" a.c`, []string{"-o", "out dir/out.o", "a.c"}},
		{"escaped quote", `say \"hi\"`, []string{"say", `"hi"`}},
		{"empty quotes", `-D ""`, []string{"-D", ""}},
		{"trailing space", "-v ", []string{"-v"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, domain.SplitCommandLine(tt.in))
		})
	}
}
