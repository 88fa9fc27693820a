package templates

import "embed"

// sources holds the template files of every set.
//
//go:embed all:files
var sources embed.FS
