package version

// Version is the current version of the meshetar engine. Every report records it.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/meshetar/internal/version.Version=1.2.3"
var Version = "v0.4.0"

// GetVersion returns the current version of the engine.
func GetVersion() string {
	return Version
}
