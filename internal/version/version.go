package version

// Set at build time with -ldflags "-X pulse-node/internal/version.Version=...".
var (
	PackageName = "pulse"
	Version     = "undefined"
	CommitHash  = "undefined"
	BuildDate   = "undefined"
)
