// Package web embeds the server-rendered pages and their assets.
package web

import "embed"

// TemplatesFS holds the page and partial templates parsed at startup.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the htmx glue script.
//
//go:embed static/*
var StaticFS embed.FS
