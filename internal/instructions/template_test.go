package instructions

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestExpander_Expand(t *testing.T) {
	vars := Vars{SX: 10, SY: 64, SZ: -3, World: "arena", Level: 7, EnemyType: "zombie", ArchetypeID: "zombie-basic"}

	tests := map[string]struct {
		tmpl   string
		exp    string
		expErr string
	}{
		"plain text": {
			tmpl: "say hello",
			exp:  "say hello",
		},
		"coordinates": {
			tmpl: "summon {{ .EnemyType }} {{ .SX }} {{ .SY }} {{ .SZ }}",
			exp:  "summon zombie 10 64 -3",
		},
		"world and level": {
			tmpl: "execute in {{ .World }} run tag @e[tag={{ .ArchetypeID }}] add lvl{{ .Level }}",
			exp:  "execute in arena run tag @e[tag=zombie-basic] add lvl7",
		},
		"sprig function": {
			tmpl: "{{ .EnemyType | upper }}",
			exp:  "ZOMBIE",
		},
		"bad syntax": {
			tmpl:   "{{ .SX ",
			expErr: "parsing template",
		},
		"unknown field": {
			tmpl:   "{{ .Missing }}",
			expErr: "executing template",
		},
	}

	e := NewExpander()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := e.Expand(tt.tmpl, vars)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "expanded", got, tt.exp)
		})
	}
}

func TestExpander_CachesParsedTemplates(t *testing.T) {
	e := NewExpander()
	tmpl := "summon {{ .EnemyType }}"

	for _, enemy := range []string{"zombie", "skeleton"} {
		got, err := e.Expand(tmpl, Vars{EnemyType: enemy})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testutil.AssertEqual(t, "expanded", got, "summon "+enemy)
	}

	_, ok := e.cache.Load(tmpl)
	testutil.AssertEqual(t, "cached", ok, true)

	e.Reset()
	_, ok = e.cache.Load(tmpl)
	testutil.AssertEqual(t, "cached after reset", ok, false)
}

func TestSinkFunc(t *testing.T) {
	var got Instruction
	sink := SinkFunc(func(_ context.Context, in Instruction) error {
		got = in
		return nil
	})

	in := Instruction{World: "arena", Command: "summon zombie"}
	if err := sink.Submit(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "instruction", got, in)

	if err := (LogSink{}).Submit(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
