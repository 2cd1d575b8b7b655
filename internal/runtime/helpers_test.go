package runtime_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/accelerate/internal/runtime"
	"github.com/aretw0/accelerate/pkg/adapters/memory"
	"github.com/aretw0/accelerate/pkg/domain"
)

// newMotions builds a catalog of n motions whose bodies identify index and direction.
func newMotions(n int) []domain.Motion {
	motions := make([]domain.Motion, n)
	for i := range motions {
		motions[i] = domain.Motion{
			Name:    fmt.Sprintf("%03d-motion", i+1),
			Version: []int{i + 1},
			Add:     fmt.Sprintf("add:%d", i),
			Sub:     fmt.Sprintf("sub:%d", i),
		}
	}
	return motions
}

// newEngine returns an engine over n motions and an in-memory driver seeded at status.
func newEngine(t *testing.T, n, status int, opts ...runtime.EngineOption) (*runtime.Engine, *memory.Driver) {
	t.Helper()
	driver := memory.NewDriver(memory.WithStatus(status))
	return runtime.NewEngine(driver, newMotions(n), opts...), driver
}

// failOn rejects the step whose body equals body.
func failOn(body string, err error) memory.ExecFunc {
	return func(ctx context.Context, step domain.Step) error {
		if step.Body == body {
			return err
		}
		return nil
	}
}

// bodies lists the bodies of the executed steps.
func bodies(steps []domain.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Body
	}
	return out
}

// phrase is a tiny reversible "database": each motion transforms a string and its
// sub half restores the previous value exactly.
type phrase struct {
	value string
}

var phraseValues = []string{
	"",
	"hello",
	"hello world",
	"hellu wurld",
	"HELLU WURLD",
	"HEllU WURlD",
}

func (p *phrase) exec(ctx context.Context, step domain.Step) error {
	type motion struct{ add, sub func(string) string }
	motions := []motion{
		{add: func(string) string { return "hello" }, sub: func(string) string { return "" }},
		{add: func(v string) string { return v + " world" }, sub: func(v string) string { return strings.TrimSuffix(v, " world") }},
		{add: func(v string) string { return strings.ReplaceAll(v, "o", "u") }, sub: func(v string) string { return strings.ReplaceAll(v, "u", "o") }},
		{add: strings.ToUpper, sub: strings.ToLower},
		{add: func(v string) string { return strings.ReplaceAll(v, "L", "l") }, sub: func(v string) string { return strings.ReplaceAll(v, "l", "L") }},
	}

	m := motions[step.Index]
	if step.Operation == domain.Forward {
		p.value = m.add(p.value)
	} else {
		p.value = m.sub(p.value)
	}
	return nil
}
