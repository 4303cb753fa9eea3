// Package configs provides embedded assets for surface.
//
// The indexer agent template is embedded at build time so the
// summarizer works in every distribution without a plugin checkout.
// Users override it by placing their own indexer.md in the state dir
// (~/.claude/surface/); see internal/summary.
package configs

import _ "embed"

// IndexerTemplate is the default summarizer prompt. Its YAML
// frontmatter is stripped before use and the {metadata} placeholder
// is replaced with the session metadata as indented JSON.
//
//go:embed indexer.md
var IndexerTemplate string
