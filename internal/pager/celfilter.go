package pager

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/LeoDT/log-majin/internal/logstore"
)

// celFilter wraps a compiled CEL program evaluated per log. When disabled,
// Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("content", cel.StringType),
		cel.Variable("template_id", cel.StringType),
		cel.Variable("revision_id", cel.StringType),
		cel.Variable("created_at_ms", cel.IntType),
		// slot values as a map of slotId -> value for field filtering
		cel.Variable("values", cel.MapType(cel.StringType, cel.StringType)),
		// current time in ms for windowed filters
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against a log. When disabled,
// returns true. Evaluation errors reject the log rather than failing the
// page.
func (f celFilter) Eval(l logstore.Log) bool {
	if !f.enabled {
		return true
	}
	values := make(map[string]string, len(l.SlotValues))
	for _, v := range l.SlotValues {
		values[v.SlotID] = v.Value
	}
	out, _, err := f.prog.Eval(map[string]any{
		"content":       l.Content,
		"template_id":   l.TemplateID,
		"revision_id":   l.TemplateRevisionID,
		"created_at_ms": l.CreateAtMs,
		"values":        values,
		"now_ms":        time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
