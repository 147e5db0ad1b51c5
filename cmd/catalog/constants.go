package main

import "time"

// EnvActor supplies the default --actor value.
const EnvActor = "CATALOG_ACTOR"

// Default limits for CLI commands.
const (
	DefaultListLimit  = 50
	DefaultAuditLimit = 50
)

// drainTimeout bounds how long the CLI waits for queued notifications on exit.
const drainTimeout = 15 * time.Second

// Valid batch file formats.
var validFormats = []string{"auto", "json", "yaml", "csv"}

// Audit export formats. text is the human-readable view.
var exportFormats = []string{"text", "json", "csv", "markdown"}
