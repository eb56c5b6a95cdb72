package replet

// Version is the release of this module. Builds may override it with
// -ldflags "-X github.com/aretw0/replet.Version=...".
var Version = "v0.1.0"
