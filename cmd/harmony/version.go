package main

import "runtime/debug"

// version is set at link time with -ldflags "-X main.version=v0.1.0".
var version string

// Version reports the linked version, then the module version of an
// installed binary, then the VCS state of a development build.
func Version() string {
	if version != "" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	rev, modified := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	switch {
	case rev == "":
		return "devel"
	case modified:
		return "devel+" + rev + "-dirty"
	default:
		return "devel+" + rev
	}
}
