package common

// Version information, overridable at build time via ldflags:
//
//	go build -ldflags "-X github.com/khtseng/folio/internal/common.version=1.2.0"
var (
	version   = "0.3.0"
	build     = "dev"
	gitCommit = "unknown"
)

// GetVersion returns the application version.
func GetVersion() string {
	return version
}

// GetBuild returns the build identifier.
func GetBuild() string {
	return build
}

// GetGitCommit returns the git commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}
