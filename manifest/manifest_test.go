package manifest

import (
	"testing"

	"github.com/mm0-org/mmb/env"
)

const fixture = `{
  "formatVersion": "v1.0.0",
  "sorts": [
    {"name": "wff"}
  ],
  "terms": [
    {"name": "imp", "ret": "wff", "args": [
      {"name": "a", "sort": "wff", "bound": true},
      {"name": "b", "sort": "wff", "bound": true}
    ]}
  ]
}`

func TestLoadValidFixture(t *testing.T) {
	d, err := Load([]byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Sorts) != 1 || len(d.Terms) != 1 {
		t.Fatalf("expected one sort and one term, got %+v", d)
	}
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	_, err := Load([]byte(`{"formatVersion": "v1.0.0", "terms": [{"args": []}]}`))
	if err == nil {
		t.Fatal("expected schema validation error for a term missing name/ret")
	}
}

func TestLoadRejectsOldFormatVersion(t *testing.T) {
	_, err := Load([]byte(`{"formatVersion": "v0.9.0"}`))
	if err == nil {
		t.Fatal("expected an error for a formatVersion below the minimum supported")
	}
}

func TestLoadRejectsMajorVersionSkew(t *testing.T) {
	_, err := Load([]byte(`{"formatVersion": "v2.0.0"}`))
	if err == nil {
		t.Fatal("expected an error for a formatVersion on a different major version")
	}
}

func TestApplyPopulatesEnvironment(t *testing.T) {
	d, err := Load([]byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	e := env.New()
	if err := Apply(d, e, "fixture.json"); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.LookupSort("wff"); !ok {
		t.Fatal("expected sort wff to be admitted")
	}
	id, ok := e.LookupTerm("imp")
	if !ok {
		t.Fatal("expected term imp to be admitted")
	}
	rec := e.Terms.Get(id)
	if len(rec.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(rec.Args))
	}
}

const fixtureWithDef = `{
  "formatVersion": "v1.0.0",
  "sorts": [
    {"name": "wff"}
  ],
  "terms": [
    {"name": "bar", "ret": "wff", "args": [
      {"name": "a", "sort": "wff", "bound": true},
      {"name": "b", "sort": "wff", "bound": true}
    ]},
    {"name": "foo", "ret": "wff", "args": [
      {"name": "x", "sort": "wff", "bound": true}
    ], "def": {"app": {"term": "bar", "args": [{"param": "x"}, {"param": "x"}]}}}
  ]
}`

func TestApplyBuildsDefinitionBody(t *testing.T) {
	d, err := Load([]byte(fixtureWithDef))
	if err != nil {
		t.Fatal(err)
	}
	e := env.New()
	if err := Apply(d, e, "fixture.json"); err != nil {
		t.Fatal(err)
	}
	fooID, ok := e.LookupTerm("foo")
	if !ok {
		t.Fatal("expected term foo to be admitted")
	}
	rec := e.Terms.Get(fooID)
	if rec.Def == nil {
		t.Fatal("expected foo to carry a non-nil Def")
	}
	if rec.Def.Kind != env.ExprApp || len(rec.Def.Args) != 2 {
		t.Fatalf("expected Def to be a 2-arg application, got %+v", rec.Def)
	}
	for i, a := range rec.Def.Args {
		if a.Kind != env.ExprRef || a.Param != 0 {
			t.Fatalf("expected arg %d to be a reference to parameter 0, got %+v", i, a)
		}
	}
}

func TestApplyUnknownSortFails(t *testing.T) {
	d, err := Load([]byte(`{"formatVersion":"v1.0.0","terms":[{"name":"imp","ret":"wff"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := env.New()
	if err := Apply(d, e, "fixture.json"); err == nil {
		t.Fatal("expected an error referencing an undeclared sort")
	}
}
