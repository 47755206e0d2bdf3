package main

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
// at release build time; left at their defaults for local builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
