package list

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bfc-lang/bfc/compiler/ir"
)

func TestListing(t *testing.T) {
	p := []ir.Insn{
		ir.Add(3),
		ir.Move(-2),
		ir.Write(1),
	}

	exp := `0  Add             +3
1  Move            <2
2  Write           .1
`

	assert.Equal(t, exp, string(Listing(nil, p)))
}

func TestListingPadsIndex(t *testing.T) {
	p := make([]ir.Insn, 12)
	for i := range p {
		p[i] = ir.Add(1)
	}

	b := Listing(nil, p)
	lines := strings.Split(string(b), "\n")

	assert.Len(t, lines, 13) // trailing newline
	assert.True(t, strings.HasPrefix(lines[0], "00  "), "%q", lines[0])
	assert.True(t, strings.HasPrefix(lines[11], "11  "), "%q", lines[11])
}

func TestListingEmpty(t *testing.T) {
	assert.Empty(t, Listing(nil, nil))
}
