package analysis

import (
	"fmt"
	"sync"
	"testing"

	"github.com/NickyBoy89/propmigrate/tree"
	"github.com/stretchr/testify/assert"
)

func TestRecordOnce(t *testing.T) {
	ctx := NewContext()
	assert.True(t, ctx.Record("org.example.Task", "label"))
	assert.False(t, ctx.Record("org.example.Task", "label"))
	assert.True(t, ctx.Record("org.example.Task", "count"))

	lookup := ctx.Freeze()
	assert.Equal(t, 2, lookup.Len())
	assert.Equal(t, []string{"count", "label"}, lookup.Properties("org.example.Task"))
	assert.True(t, lookup.Has("org.example.Task", "label"))
	assert.False(t, lookup.Has("org.example.Task", "name"))
	assert.False(t, lookup.Has("org.example.Other", "label"))
	assert.True(t, lookup.HasType("org.example.Task"))
	assert.False(t, lookup.HasType("org.example.Other"))
}

func TestRecordConcurrently(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				ctx.Record(fmt.Sprintf("org.example.Task%d", i%5), fmt.Sprintf("p%d", i))
			}
		}()
	}
	wg.Wait()

	lookup := ctx.Freeze()
	assert.Equal(t, 50, lookup.Len())
	assert.Len(t, lookup.Types(), 5)
}

func TestRecordAfterFreezePanics(t *testing.T) {
	ctx := NewContext()
	ctx.Freeze()
	assert.Panics(t, func() { ctx.Record("org.example.Task", "label") })
}

func TestCandidatesAreOrdered(t *testing.T) {
	ctx := NewContext()
	ctx.Record("b.Task", "x")
	ctx.Record("a.Task", "z")
	ctx.Record("a.Task", "y")

	assert.Equal(t, []Candidate{
		{TypeName: "a.Task", Property: "y"},
		{TypeName: "a.Task", Property: "z"},
		{TypeName: "b.Task", Property: "x"},
	}, ctx.Freeze().Candidates())
}

func TestDialects(t *testing.T) {
	ctx := NewContext()
	ctx.SetDialect("build.gradle", tree.Groovy)
	lookup := ctx.Freeze()

	assert.Equal(t, tree.Groovy, lookup.Dialect("build.gradle"))
	assert.Equal(t, tree.Groovy, lookup.Dialect("src/Task.groovy"))
	assert.Equal(t, tree.Java, lookup.Dialect("src/Task.java"))
}
