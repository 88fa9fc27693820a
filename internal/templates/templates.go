package templates

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"text/template"

	"github.com/vango-dev/projgen/internal/errors"
)

// ManifestFile is the package manifest path inside a project.
const ManifestFile = "package.json"

// Options carries the values a template interpolates besides the name.
type Options struct {
	// Port is the dev-server port.
	Port int

	// SharedAlias is the shared directory relative to the project, slash-separated.
	SharedAlias string

	// PostCSSConfig is the PostCSS config relative to the project, slash-separated.
	PostCSSConfig string
}

// data is the value templates execute against.
type data struct {
	Name          string
	Port          int
	SharedAlias   string
	PostCSSConfig string
}

// File is one rendered file.
type File struct {
	// Path is relative to the project directory, slash-separated.
	Path string

	// Content is the full file body.
	Content []byte

	// Mode is the permission the file is written with.
	Mode fs.FileMode
}

// Descriptor is a fully rendered project, held in memory until written.
type Descriptor struct {
	// Name is the project name.
	Name string

	// Template is the name of the set it was rendered from.
	Template string

	// Port is the dev-server port embedded in the build config.
	Port int

	// Files are in write order.
	Files []File
}

// Paths returns the relative paths of all files in write order.
func (d *Descriptor) Paths() []string {
	paths := make([]string, len(d.Files))
	for i, f := range d.Files {
		paths[i] = f.Path
	}
	return paths
}

// Dirs returns the directories the files need, parents first.
func (d *Descriptor) Dirs() []string {
	seen := map[string]bool{}
	var dirs []string
	for _, f := range d.Files {
		for dir := path.Dir(f.Path); dir != "."; dir = path.Dir(dir) {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Manifest is the package.json shape. Field order is the output order.
type Manifest struct {
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Scripts         Scripts           `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Scripts are the package.json scripts.
type Scripts struct {
	Dev     string `json:"dev"`
	Build   string `json:"build"`
	Preview string `json:"preview"`
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Manifest is the package.json written first. Name is filled in on render.
	Manifest Manifest

	// Files are relative paths in write order, after package.json. Each has
	// a matching files/<Name>/<path>.tmpl source.
	Files []string
}

// Available templates.
var templates = map[string]*Template{
	"vite-react": viteReactTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E145").
			WithDetail("Template '" + name + "' not found")
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns every output path of the template in write order.
func (t *Template) Names() []string {
	return append([]string{ManifestFile}, t.Files...)
}

// Render produces every file of the template for the named project.
// The name must already have passed ValidateName; it is still escaped for
// each target format.
func (t *Template) Render(name string, opts Options) (*Descriptor, error) {
	d := data{
		Name:          name,
		Port:          opts.Port,
		SharedAlias:   opts.SharedAlias,
		PostCSSConfig: opts.PostCSSConfig,
	}

	desc := &Descriptor{
		Name:     name,
		Template: t.Name,
		Port:     opts.Port,
		Files:    make([]File, 0, len(t.Files)+1),
	}

	manifest, err := t.renderManifest(name)
	if err != nil {
		return nil, err
	}
	desc.Files = append(desc.Files, File{Path: ManifestFile, Content: manifest, Mode: 0644})

	for _, rel := range t.Files {
		content, err := t.renderFile(rel, d)
		if err != nil {
			return nil, err
		}
		desc.Files = append(desc.Files, File{Path: rel, Content: content, Mode: 0644})
	}

	return desc, nil
}

// renderManifest encodes package.json with two-space indentation.
func (t *Template) renderManifest(name string) ([]byte, error) {
	m := t.Manifest
	m.Name = name

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, errors.New("E102").WithPath(ManifestFile).Wrap(err)
	}
	return buf.Bytes(), nil
}

// renderFile executes files/<set>/<rel>.tmpl.
func (t *Template) renderFile(rel string, d data) ([]byte, error) {
	src := path.Join("files", t.Name, rel+".tmpl")
	raw, err := fs.ReadFile(sources, src)
	if err != nil {
		return nil, errors.New("E102").WithPath(rel).WithDetail("missing template source").Wrap(err)
	}

	tmpl, err := template.New(rel).
		Delims("[[", "]]").
		Funcs(funcMap).
		Option("missingkey=error").
		Parse(string(raw))
	if err != nil {
		return nil, errors.New("E102").WithPath(rel).Wrap(err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return nil, errors.New("E102").WithPath(rel).Wrap(err)
	}
	return buf.Bytes(), nil
}

// viteReactTemplate returns the Vite + React template.
func viteReactTemplate() *Template {
	return &Template{
		Name:        "vite-react",
		Description: "Vite + React + TypeScript app with Tailwind theme tokens",
		Manifest: Manifest{
			Type: "module",
			Scripts: Scripts{
				Dev:     "vite",
				Build:   "vite build",
				Preview: "vite preview",
			},
			Dependencies: map[string]string{
				"react":     "workspace:*",
				"react-dom": "workspace:*",
			},
			DevDependencies: map[string]string{
				"@types/react":         "^18.2.0",
				"@types/react-dom":     "^18.2.0",
				"@vitejs/plugin-react": "workspace:*",
				"typescript":           "^5.2.0",
				"vite":                 "workspace:*",
			},
		},
		Files: []string{
			"index.html",
			"vite.config.ts",
			"src/main.tsx",
			"src/App.tsx",
			"src/index.css",
		},
	}
}
