package build_info

// Overridden at build time with -ldflags "-X github.com/pipeos/pipes/src/utils/build_info.Version=..."
var Version = "dev"
