package directive

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestPattern_SharedAcrossConcurrentFirstUse(t *testing.T) {
	defer goleak.VerifyNone(t)

	const callers = 64
	var (
		mu   sync.Mutex
		seen = make(map[*regexp.Regexp]int)
	)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			re := Pattern()
			mu.Lock()
			seen[re]++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, seen, 1, "every caller must observe the same compiled pattern")
	for re, n := range seen {
		assert.Equal(t, callers, n)
		assert.Same(t, Pattern(), re)
	}
}

func TestScan_ConcurrentDocuments(t *testing.T) {
	defer goleak.VerifyNone(t)

	docs := []string{
		simpleChapter,
		"{{#authors a,b,c}}",
		"nothing here",
		"\\{{#author hidden}}",
	}
	want := make([][]Occurrence, len(docs))
	for i, d := range docs {
		want[i] = All(d)
	}

	var g errgroup.Group
	g.SetLimit(8)
	for round := 0; round < 50; round++ {
		for i, d := range docs {
			g.Go(func() error {
				assert.Equal(t, want[i], All(d))
				return nil
			})
		}
	}
	require.NoError(t, g.Wait())
}
