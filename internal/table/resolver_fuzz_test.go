// internal/table/resolver_fuzz_test.go
package table

import (
	"fmt"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
)

// FuzzColumnIndexMap checks that any well-formed header geometry yields
// contiguous logical indices and that every coordinate resolves to itself.
func FuzzColumnIndexMap(f *testing.F) {
	f.Add([]byte{2, 3, 1, 0, 4})
	f.Add([]byte{1})

	f.Fuzz(func(t *testing.T, data []byte) {
		consumer := fuzz.NewConsumer(data)
		groups, err := consumer.GetInt()
		if err != nil {
			return
		}
		groups = int(uint(groups)%8) + 1

		var mains, subs []string
		var spans []int
		for g := 0; g < groups; g++ {
			span, err := consumer.GetInt()
			if err != nil {
				return
			}
			span = int(uint(span)%5) + 1
			mains = append(mains, fmt.Sprintf("main-%d", g))
			spans = append(spans, span)
			for s := 0; s < span; s++ {
				subs = append(subs, fmt.Sprintf("sub-%d-%d", g, s))
			}
		}

		m, err := BuildColumnIndexMap(mains, spans, subs)
		if err != nil {
			t.Fatalf("well-formed geometry rejected: %v", err)
		}
		coords := m.Coordinates()
		if len(coords) != len(subs) {
			t.Fatalf("got %d coordinates for %d subheaders", len(coords), len(subs))
		}
		for i, c := range coords {
			if c.LogicalIndex != i {
				t.Fatalf("coordinate %d has logical index %d", i, c.LogicalIndex)
			}
			idx, err := ResolveColumnIndex(mains, spans, subs, c.MainHeader, c.SubHeader)
			if err != nil || idx != i {
				t.Fatalf("resolve(%q, %q) = %d, %v; want %d", c.MainHeader, c.SubHeader, idx, err, i)
			}
		}
	})
}
