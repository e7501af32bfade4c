package version

// version is set at build time via -ldflags
var version = "development"

// UsermetaVersion returns the service version
func UsermetaVersion() string {
	return version
}
