package version

// Commit is stamped by the build via -ldflags "-X zoning-api/internal/version.Commit=...".
var Commit = "dev"
