package wavescope

import "embed"

//go:embed templates/*
var TemplateFS embed.FS

//go:embed migrations/*
var MigrationFS embed.FS
