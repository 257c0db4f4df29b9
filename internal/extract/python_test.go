package extract

import (
	"reflect"
	"testing"

	"github.com/roderik/claude-code-project-index/internal/model"
)

func TestPythonEnumRelocation(t *testing.T) {
	t.Parallel()

	src := "from enum import Enum\n" +
		"\n" +
		"class Color(Enum):\n" +
		"    RED = 1\n" +
		"    BLUE = 2\n"

	b := Python(src)

	if _, ok := b.Classes["Color"]; ok {
		t.Errorf("Color should not remain in classes")
	}
	enum, ok := b.Enums["Color"]
	if !ok {
		t.Fatalf("Color missing from enums")
	}
	want := []string{"RED", "BLUE"}
	if !reflect.DeepEqual(enum.Values, want) {
		t.Errorf("values = %v, want %v", enum.Values, want)
	}
}

func TestPythonClassKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want model.ClassKind
	}{
		{"exception", "class ParseError(ValueError):\n    pass\n", model.KindException},
		{"abstract abc", "class Base(ABC):\n    pass\n", model.KindAbstract},
		{"abstract protocol", "class Reader(Protocol):\n    pass\n", model.KindAbstract},
		{"plain", "class Widget(Base):\n    pass\n", model.KindPlain},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := Python(tt.src)
			if len(b.Classes) != 1 {
				t.Fatalf("classes = %d, want 1", len(b.Classes))
			}
			for _, cls := range b.Classes {
				if cls.Kind != tt.want {
					t.Errorf("kind = %q, want %q", cls.Kind, tt.want)
				}
			}
		})
	}
}

func TestPythonFunctionSignature(t *testing.T) {
	t.Parallel()

	src := "def compute(a,\n" +
		"            b) -> int:\n" +
		"    return a + b\n" +
		"\n" +
		"async def fetch(url):\n" +
		"    pass\n"

	b := Python(src)

	fn, ok := b.Functions["compute"]
	if !ok {
		t.Fatalf("compute missing: %v", b.Functions)
	}
	if fn.Signature != "(a, b) -> int" {
		t.Errorf("signature = %q", fn.Signature)
	}

	fetch, ok := b.Functions["fetch"]
	if !ok {
		t.Fatalf("fetch missing")
	}
	if fetch.Signature != "async (url)" {
		t.Errorf("signature = %q", fetch.Signature)
	}
}

func TestPythonMethodsAndDoc(t *testing.T) {
	t.Parallel()

	src := "class Store:\n" +
		"    \"\"\"Persistent key-value store.\"\"\"\n" +
		"\n" +
		"    def __init__(self, path):\n" +
		"        self.path = path\n" +
		"\n" +
		"    def get(self, key):\n" +
		"        \"\"\"Fetch a value.\"\"\"\n" +
		"        return self.data[key]\n" +
		"\n" +
		"    def __repr__(self):\n" +
		"        return 'Store'\n"

	b := Python(src)

	cls, ok := b.Classes["Store"]
	if !ok {
		t.Fatalf("Store missing")
	}
	if cls.Doc != "Persistent key-value store." {
		t.Errorf("doc = %q", cls.Doc)
	}
	if _, ok := cls.Methods["__init__"]; !ok {
		t.Errorf("__init__ should be kept")
	}
	if _, ok := cls.Methods["__repr__"]; ok {
		t.Errorf("__repr__ should be skipped")
	}
	if got := cls.Methods["get"].Doc; got != "Fetch a value." {
		t.Errorf("method doc = %q", got)
	}
}

func TestPythonNestedClasses(t *testing.T) {
	t.Parallel()

	// A class nested inside a top-level class is not an entity of its own;
	// its methods land on the enclosing class.
	src := "class Outer:\n" +
		"    class Inner:\n" +
		"        def inner_method(self):\n" +
		"            pass\n" +
		"\n" +
		"    def visible(self):\n" +
		"        pass\n"

	b := Python(src)

	if _, ok := b.Classes["Inner"]; ok {
		t.Errorf("nested class should not be an entity")
	}
	outer := b.Classes["Outer"]
	if _, ok := outer.Methods["inner_method"]; !ok {
		t.Errorf("nested-class method should attach to the enclosing class")
	}
	if _, ok := outer.Methods["visible"]; !ok {
		t.Errorf("visible missing after dedent back into Outer")
	}
}

func TestPythonMethodsOutsideAnyClassDropped(t *testing.T) {
	t.Parallel()

	// A class inside a block never becomes the active class, so its methods
	// have no recorded owner.
	src := "if True:\n" +
		"    class Hidden:\n" +
		"        def lost(self):\n" +
		"            pass\n"

	b := Python(src)

	if len(b.Classes) != 0 {
		t.Errorf("classes = %v, want none", b.Classes)
	}
	if len(b.Functions) != 0 {
		t.Errorf("functions = %v, want none", b.Functions)
	}
}

func TestPythonModuleLevelBindings(t *testing.T) {
	t.Parallel()

	src := "MAX_SIZE = 100\n" +
		"NAMES = ['a', 'b']\n" +
		"GREETING = \"hi\"\n" +
		"PathMap = Dict[str, Path]\n" +
		"count: int = 0\n"

	b := Python(src)

	if got := b.Constants["MAX_SIZE"]; got != model.KindNumber {
		t.Errorf("MAX_SIZE kind = %q", got)
	}
	if got := b.Constants["NAMES"]; got != model.KindCollection {
		t.Errorf("NAMES kind = %q", got)
	}
	if got := b.Constants["GREETING"]; got != model.KindString {
		t.Errorf("GREETING kind = %q", got)
	}
	if got := b.TypeAliases["PathMap"]; got != "Dict[str, Path]" {
		t.Errorf("alias = %q", got)
	}
	if !reflect.DeepEqual(b.Variables, []string{"count"}) {
		t.Errorf("variables = %v", b.Variables)
	}
}

func TestPythonImports(t *testing.T) {
	t.Parallel()

	src := "import os, sys\n" +
		"from pathlib import Path\n" +
		"import numpy as np\n"

	b := Python(src)

	want := []string{"os", "sys", "pathlib", "numpy"}
	if !reflect.DeepEqual(b.Imports, want) {
		t.Errorf("imports = %v, want %v", b.Imports, want)
	}
}

func TestPythonCallsDetected(t *testing.T) {
	t.Parallel()

	src := "def run():\n" +
		"    helper()\n" +
		"    print('x')\n" +
		"    if True:\n" +
		"        helper()\n" +
		"\n" +
		"def helper():\n" +
		"    pass\n"

	b := Python(src)

	got := b.Functions["run"].Calls
	if !reflect.DeepEqual(got, []string{"helper"}) {
		t.Errorf("calls = %v, want [helper]", got)
	}
}

func TestPythonDecorators(t *testing.T) {
	t.Parallel()

	src := "@dataclass\n" +
		"class Point:\n" +
		"    x: int\n" +
		"    y: int\n" +
		"\n" +
		"    @property\n" +
		"    def norm(self):\n" +
		"        return 0\n"

	b := Python(src)

	cls := b.Classes["Point"]
	if !reflect.DeepEqual(cls.Decorators, []string{"dataclass"}) {
		t.Errorf("class decorators = %v", cls.Decorators)
	}
	if !reflect.DeepEqual(cls.Properties, []string{"x", "y"}) {
		t.Errorf("properties = %v", cls.Properties)
	}
	if !reflect.DeepEqual(cls.Methods["norm"].Decorators, []string{"property"}) {
		t.Errorf("method decorators = %v", cls.Methods["norm"].Decorators)
	}
}

func TestPythonGarbageInput(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"", "\x00\xff\xfe garbage", "def (((", "class :"} {
		b := Python(src)
		if b == nil {
			t.Fatalf("nil bundle for %q", src)
		}
		if b.Functions == nil || b.Classes == nil || b.Constants == nil {
			t.Errorf("maps not allocated for %q", src)
		}
	}
}
