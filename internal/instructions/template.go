package instructions

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

// Vars are the values available to an archetype's command templates, for
// example `summon {{ .EnemyType }} {{ .SX }} {{ .SY }} {{ .SZ }}`.
type Vars struct {
	SX          int
	SY          int
	SZ          int
	World       string
	Level       int
	EnemyType   string
	ArchetypeID string
}

// Expander caches parsed templates by their source text.
type Expander struct {
	cache sync.Map // string -> *template.Template
}

func NewExpander() *Expander {
	return &Expander{}
}

func (e *Expander) Expand(tmplStr string, vars Vars) (string, error) {
	// Quick check: if no template markers, return as-is
	if !strings.Contains(tmplStr, "{{") {
		return tmplStr, nil
	}

	if cached, ok := e.cache.Load(tmplStr); ok {
		return execute(cached.(*template.Template), vars)
	}

	tmpl, err := parse(tmplStr)
	if err != nil {
		return "", err
	}
	e.cache.Store(tmplStr, tmpl)

	return execute(tmpl, vars)
}

// Reset drops every cached template. Called after archetypes are reloaded.
func (e *Expander) Reset() {
	e.cache.Clear()
}

func parse(tmplStr string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
