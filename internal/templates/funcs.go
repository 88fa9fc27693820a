package templates

import (
	"encoding/json"
	"html"
	"math/rand/v2"
	"strings"
	"text/template"
)

// jsxReplacer escapes characters that JSX treats as markup or expressions.
var jsxReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"{", "&#123;",
	"}", "&#125;",
)

// HTMLText escapes s for use as HTML text or a quoted attribute value.
func HTMLText(s string) string {
	return html.EscapeString(s)
}

// JSXText escapes s for use as JSX element children.
func JSXText(s string) string {
	return jsxReplacer.Replace(s)
}

// TSString returns s as a double-quoted TypeScript string literal.
func TSString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

// funcMap is available to every template.
var funcMap = template.FuncMap{
	"htmlText": HTMLText,
	"jsxText":  JSXText,
	"tsString": TSString,
}

// PickPort draws a port uniformly from [lo, hi). A nil r uses the
// package-level generator.
func PickPort(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	if r == nil {
		return lo + rand.IntN(hi-lo)
	}
	return lo + r.IntN(hi-lo)
}
