package minimal

// Version is the release of the shell, set at build time with
// -ldflags "-X github.com/yurixander/minimal.Version=...".
var Version = "dev"
