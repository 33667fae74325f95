package version

// Set at build time via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Full returns the version string logged at startup.
func Full() string {
	return Version + " (commit: " + Commit + ", built: " + BuildDate + ")"
}
