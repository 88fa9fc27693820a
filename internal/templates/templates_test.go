package templates

import (
	"encoding/json"
	"math/rand/v2"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/vango-dev/projgen/internal/errors"
)

var defaultOptions = Options{
	Port:          3342,
	SharedAlias:   "../../shared",
	PostCSSConfig: "../../postcss.config.js",
}

func render(t *testing.T, name string, opts Options) *Descriptor {
	t.Helper()
	tmpl, err := Get("vite-react")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	desc, err := tmpl.Render(name, opts)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	return desc
}

func content(t *testing.T, desc *Descriptor, path string) string {
	t.Helper()
	for _, f := range desc.Files {
		if f.Path == path {
			return string(f.Content)
		}
	}
	t.Fatalf("%s not rendered", path)
	return ""
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"vite-react", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if !errors.HasCode(err, "E145") {
					t.Errorf("Expected E145, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
		})
	}
}

func TestList(t *testing.T) {
	names := List()
	if len(names) == 0 || names[0] != "vite-react" {
		t.Errorf("List() = %v", names)
	}
}

func TestTemplate_Names_WriteOrder(t *testing.T) {
	tmpl, _ := Get("vite-react")
	want := []string{
		"package.json",
		"index.html",
		"vite.config.ts",
		"src/main.tsx",
		"src/App.tsx",
		"src/index.css",
	}
	if got := tmpl.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	desc := render(t, "liquid-glass", defaultOptions)
	if got := desc.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
	if got := desc.Dirs(); !reflect.DeepEqual(got, []string{"src"}) {
		t.Errorf("Dirs() = %v, want [src]", got)
	}
}

func TestRender_LiquidGlass(t *testing.T) {
	desc := render(t, "liquid-glass", defaultOptions)

	if desc.Name != "liquid-glass" || desc.Port != 3342 || desc.Template != "vite-react" {
		t.Errorf("Descriptor = %+v", desc)
	}

	t.Run("manifest", func(t *testing.T) {
		var m Manifest
		if err := json.Unmarshal([]byte(content(t, desc, "package.json")), &m); err != nil {
			t.Fatalf("package.json is not valid JSON: %v", err)
		}
		if m.Name != "liquid-glass" {
			t.Errorf("name = %q", m.Name)
		}
		if m.Type != "module" {
			t.Errorf("type = %q", m.Type)
		}
		if m.Scripts != (Scripts{Dev: "vite", Build: "vite build", Preview: "vite preview"}) {
			t.Errorf("scripts = %+v", m.Scripts)
		}
		if m.Dependencies["react"] != "workspace:*" || m.Dependencies["react-dom"] != "workspace:*" {
			t.Errorf("dependencies = %v", m.Dependencies)
		}
		if len(m.DevDependencies) != 5 || m.DevDependencies["typescript"] != "^5.2.0" {
			t.Errorf("devDependencies = %v", m.DevDependencies)
		}
		if !strings.HasPrefix(content(t, desc, "package.json"), "{\n  \"name\": \"liquid-glass\",\n") {
			t.Error("package.json should start with a two-space indented name field")
		}
	})

	t.Run("html", func(t *testing.T) {
		html := content(t, desc, "index.html")
		if !strings.Contains(html, "<title>liquid-glass</title>") {
			t.Error("title not rendered")
		}
		if !strings.HasPrefix(html, "<!doctype html>") {
			t.Error("missing doctype")
		}
		if !strings.Contains(html, `<script type="module" src="/src/main.tsx"></script>`) {
			t.Error("missing entry script")
		}
	})

	t.Run("vite config", func(t *testing.T) {
		cfg := content(t, desc, "vite.config.ts")
		for _, want := range []string{
			`"@": resolve(__dirname, "./src"),`,
			`"@/shared": resolve(__dirname, "../../shared"),`,
			`postcss: "../../postcss.config.js",`,
			"port: 3342\n",
		} {
			if !strings.Contains(cfg, want) {
				t.Errorf("vite.config.ts missing %q", want)
			}
		}
	})

	t.Run("app", func(t *testing.T) {
		app := content(t, desc, "src/App.tsx")
		if !strings.Contains(app, `<h1 className="text-4xl font-bold mb-4">liquid-glass</h1>`) {
			t.Error("heading not rendered")
		}
		if !strings.Contains(app, "initial={{ opacity: 0, y: 20 }}") {
			t.Error("JSX object literal should pass through untouched")
		}
	})

	t.Run("main", func(t *testing.T) {
		main := content(t, desc, "src/main.tsx")
		if !strings.Contains(main, "import App from './App.tsx'") {
			t.Error("main.tsx should import App")
		}
	})

	t.Run("stylesheet", func(t *testing.T) {
		css := content(t, desc, "src/index.css")
		for _, want := range []string{"@tailwind base;", ":root {", ".dark {", "--background: 0 0% 100%;", "--radius: 0.5rem;"} {
			if !strings.Contains(css, want) {
				t.Errorf("index.css missing %q", want)
			}
		}
	})
}

func TestRender_EscapesUnvalidatedNames(t *testing.T) {
	name := `a"b<c>{d}&e`
	desc := render(t, name, defaultOptions)

	var m Manifest
	if err := json.Unmarshal([]byte(content(t, desc, "package.json")), &m); err != nil {
		t.Fatalf("package.json corrupted by name: %v", err)
	}
	if m.Name != name {
		t.Errorf("manifest name = %q, want %q", m.Name, name)
	}

	html := content(t, desc, "index.html")
	if !strings.Contains(html, "<title>a&#34;b&lt;c&gt;{d}&amp;e</title>") {
		t.Errorf("title not escaped:\n%s", html)
	}

	app := content(t, desc, "src/App.tsx")
	if !strings.Contains(app, `>a"b&lt;c&gt;&#123;d&#125;&amp;e</h1>`) {
		t.Errorf("heading not escaped:\n%s", app)
	}
}

func TestRender_AliasPathsAreQuoted(t *testing.T) {
	desc := render(t, "demo", Options{
		Port:          3000,
		SharedAlias:   `../it's "shared"`,
		PostCSSConfig: "postcss.config.js",
	})
	cfg := content(t, desc, "vite.config.ts")
	if !strings.Contains(cfg, `resolve(__dirname, "../it's \"shared\"")`) {
		t.Errorf("alias not quoted:\n%s", cfg)
	}
}

func TestPickPort_Range(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		port := PickPort(r, 3000, 4000)
		if port < 3000 || port > 3999 {
			t.Fatalf("port %d outside [3000, 3999]", port)
		}
		seen[port] = true
	}
	if len(seen) < 2 {
		t.Error("100 draws should not all be equal")
	}

	for i := 0; i < 100; i++ {
		if port := PickPort(nil, 3000, 4000); port < 3000 || port > 3999 {
			t.Fatalf("port %d outside [3000, 3999]", port)
		}
	}

	if got := PickPort(r, 5000, 5000); got != 5000 {
		t.Errorf("empty range should return lo, got %d", got)
	}
}

func TestRender_PortRoundTrip(t *testing.T) {
	portLine := regexp.MustCompile(`port: (\d+)\n`)
	for i := 0; i < 100; i++ {
		opts := defaultOptions
		opts.Port = PickPort(nil, 3000, 4000)
		desc := render(t, "demo", opts)

		m := portLine.FindStringSubmatch(content(t, desc, "vite.config.ts"))
		if m == nil {
			t.Fatal("no port in vite.config.ts")
		}
		port, _ := strconv.Atoi(m[1])
		if port != opts.Port || port < 3000 || port > 3999 {
			t.Fatalf("embedded port %d, picked %d", port, opts.Port)
		}
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
		detail   string
	}{
		{"simple", "liquid-glass", "", ""},
		{"digits first", "3d-viewer", "", ""},
		{"dots and underscores", "my_app.v2", "", ""},
		{"empty", "", "E100", ""},
		{"uppercase", "MyApp", "E101", "uppercase"},
		{"space", "my app", "E101", `' '`},
		{"slash", "a/b", "E101", "path separator"},
		{"backslash", `a\b`, "E101", "path separator"},
		{"leading dot", ".hidden", "E101", "starts with"},
		{"dot dot", "..", "E101", "starts with"},
		{"leading dash", "-x", "E101", "starts with"},
		{"quote", `a"b`, "E101", `'"'`},
		{"html", "<b>", "E101", "'<'"},
		{"reserved", "node_modules", "E101", "reserved"},
		{"too long", strings.Repeat("a", MaxNameLength+1), "E101", "limit"},
		{"at limit", strings.Repeat("a", MaxNameLength), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if !errors.HasCode(err, tt.wantCode) {
				t.Fatalf("ValidateName(%q) = %v, want %s", tt.input, err, tt.wantCode)
			}
			if tt.detail != "" && !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q should mention %q", err.Error(), tt.detail)
			}
		})
	}
}

func TestEscapers(t *testing.T) {
	if got := HTMLText(`<a href="x">&</a>`); got != "&lt;a href=&#34;x&#34;&gt;&amp;&lt;/a&gt;" {
		t.Errorf("HTMLText = %q", got)
	}
	if got := JSXText("{x} <y> & z"); got != "&#123;x&#125; &lt;y&gt; &amp; z" {
		t.Errorf("JSXText = %q", got)
	}
	if got := TSString(`a"b\c<d>`); got != `"a\"b\\c<d>"` {
		t.Errorf("TSString = %q", got)
	}
	if got := JSXText("liquid-glass"); got != "liquid-glass" {
		t.Errorf("JSXText changed a plain name: %q", got)
	}
}
