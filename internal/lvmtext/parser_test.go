package lvmtext

import (
	"math/rand"
	"testing"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/stretchr/testify/require"
)

func TestParse_ScalarAssignment(t *testing.T) {
	doc, err := Parse([]byte(`seqno = 3`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	require.Equal(t, "seqno", doc.Elements[0].Name)
	require.False(t, doc.Elements[0].IsSection)
	require.Equal(t, int64(3), doc.Elements[0].Value.Int)
}

func TestParse_NestedSections(t *testing.T) {
	src := `
vg1 {
	id = "abc123"
	physical_volumes {
		pv0 {
			id = "pvid0"
			device = "/dev/sda1"
		}
	}
}
`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)

	vg := doc.Elements[0]
	require.Equal(t, "vg1", vg.Name)
	require.True(t, vg.IsSection)
	require.Len(t, vg.Children, 2)

	pvs := vg.Children[1]
	require.Equal(t, "physical_volumes", pvs.Name)
	require.Len(t, pvs.Children, 1)
	require.Equal(t, "pv0", pvs.Children[0].Name)
}

func TestParse_ArrayValue(t *testing.T) {
	doc, err := Parse([]byte(`flags = ["READ", "VISIBLE"]`))
	require.NoError(t, err)
	arr := doc.Elements[0].Value
	require.Equal(t, KindArray, arr.Kind)
	require.Len(t, arr.Array, 2)
	require.Equal(t, "READ", arr.Array[0].Str)
	require.Equal(t, "VISIBLE", arr.Array[1].Str)
}

func TestParse_EmptyArray(t *testing.T) {
	doc, err := Parse([]byte(`flags = []`))
	require.NoError(t, err)
	require.Equal(t, KindArray, doc.Elements[0].Value.Kind)
	require.Empty(t, doc.Elements[0].Value.Array)
}

func TestParse_TrailingGarbageIsNotAnError(t *testing.T) {
	doc, err := Parse([]byte("a = 1\n\x00\x00\x00garbage"))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	require.Contains(t, string(doc.Trailing), "garbage")
}

func TestParse_MultipleTopLevelSections(t *testing.T) {
	doc, err := Parse([]byte(`vg1 { id = "a" } vg2 { id = "b" }`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 2)
}

func TestParse_UnterminatedSectionIsParseError(t *testing.T) {
	_, err := Parse([]byte(`vg1 { id = "a"`))
	require.Error(t, err)
	var pe *lvmerr.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParse_CommentsIgnored(t *testing.T) {
	doc, err := Parse([]byte("# header comment\nseqno = 1 # trailing\n"))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	require.Equal(t, int64(1), doc.Elements[0].Value.Int)
}

// Parse must return either a document or a ParseError on arbitrary input,
// never panic or loop. A fixed-seed generator keeps the corpus stable.
func TestParse_TotalOnArbitraryBytes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	alphabet := []byte(`abz_019 ={}[]",#\-` + "\n\t\x00\xff")
	for i := 0; i < 500; i++ {
		n := rng.Intn(64)
		buf := make([]byte, n)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		doc, err := Parse(buf)
		if err != nil {
			var pe *lvmerr.ParseError
			require.ErrorAs(t, err, &pe, "input %q", buf)
			continue
		}
		require.NotNil(t, doc, "input %q", buf)
	}
}

func TestParse_OrderPreserved(t *testing.T) {
	doc, err := Parse([]byte(`b = 1
a = 2
c = 3`))
	require.NoError(t, err)
	names := []string{doc.Elements[0].Name, doc.Elements[1].Name, doc.Elements[2].Name}
	require.Equal(t, []string{"b", "a", "c"}, names)
}
