package pebench

import "runtime/debug"

var (
	Version = "v0.0.0-in-progress"
	GitSHA  = "unknown"
)

// HarnessVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func HarnessVersion() string {
	return Version
}

// DependencyVersion reports the version of module path linked into the
// running binary, or "" if it is not a dependency or build info is missing.
func DependencyVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}

// SchemeModules lists the modules that implement the bundled scheme adapters.
var SchemeModules = []string{
	"github.com/fentec-project/gofe",
	"github.com/ethereum/go-ethereum",
	"github.com/btcsuite/btcd/btcec/v2",
	"github.com/roasbeef/go-go-gadget-paillier",
}
