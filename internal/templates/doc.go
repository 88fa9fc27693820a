// Package templates renders project scaffolds in memory.
//
// A template set is an ordered list of files. The package manifest is
// produced with encoding/json; every other file is an embedded text/template
// under files/<set>/ with a .tmpl suffix. Templates use [[ ]] delimiters
// because JSX object literals already use {{ }}.
//
// # Available Templates
//
//   - vite-react: Vite + React + TypeScript single-page app with Tailwind
//     theme tokens (light and dark palettes)
//
// # Usage
//
//	if err := templates.ValidateName(name); err != nil {
//	    return err
//	}
//	tmpl, err := templates.Get("vite-react")
//	if err != nil {
//	    return err
//	}
//	desc, err := tmpl.Render(name, templates.Options{
//	    Port:          templates.PickPort(nil, 3000, 4000),
//	    SharedAlias:   "../../shared",
//	    PostCSSConfig: "../../postcss.config.js",
//	})
//
// # Template Variables and Functions
//
//	[[ .Name ]]            - project name (validated, never escaped twice)
//	[[ .Port ]]            - dev-server port
//	[[ .SharedAlias ]]     - path of the shared directory, relative to the project
//	[[ .PostCSSConfig ]]   - path of the PostCSS config, relative to the project
//
//	htmlText   escapes for HTML text and attribute values
//	jsxText    escapes for JSX children (& < > { })
//	tsString   quotes as a TypeScript string literal
//
// Rendering is pure: nothing is written to disk here.
package templates
