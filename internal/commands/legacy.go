package commands

import "strings"

// legacyCommand is the hidden subcommand Execute routes the verb form to.
const legacyCommand = "__legacy"

const legacyUsage = `Usage: datashift [dir] --shift file...
       datashift [dir] --restore file...
       datashift [dir] --force-shift file...
       datashift [dir] --force-restore file...
`

// Invocation is a parsed legacy command line.
type Invocation struct {
	Dir   string
	Mode  string
	Force bool
	Files []string
}

type verb struct {
	mode  string
	force bool
}

// "--recover" is how the verbs were spelled in the original usage text.
//
//nolint:gochecknoglobals // immutable lookup table
var verbs = map[string]verb{
	"--shift":         {mode: "shift"},
	"--restore":       {mode: "restore"},
	"--recover":       {mode: "restore"},
	"--force-shift":   {mode: "shift", force: true},
	"--force-restore": {mode: "restore", force: true},
	"--force-recover": {mode: "restore", force: true},
}

// ParseLegacy parses "[dir] --verb file...".
// If the first token starts with "-" the destination defaults to the current directory.
// It returns false when usage should be printed instead.
func ParseLegacy(args []string) (Invocation, bool) {
	if len(args) == 0 {
		return Invocation{}, false
	}

	dir := "."

	if !strings.HasPrefix(args[0], "-") {
		dir, args = args[0], args[1:]
	}

	if len(args) < 2 { //nolint:mnd // verb plus at least one file
		return Invocation{}, false
	}

	v, ok := verbs[args[0]]
	if !ok {
		return Invocation{}, false
	}

	return Invocation{Dir: dir, Mode: v.mode, Force: v.force, Files: args[1:]}, true
}

// IsLegacy reports whether args has the shape "[dir] --verb ...".
func IsLegacy(args []string) bool {
	if len(args) > 0 {
		if _, ok := verbs[args[0]]; ok {
			return true
		}
	}

	if len(args) > 1 && !strings.HasPrefix(args[0], "-") {
		_, ok := verbs[args[1]]

		return ok
	}

	return false
}
