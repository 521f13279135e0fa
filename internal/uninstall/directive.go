package uninstall

import "strings"

// Directive is the uninstall action requested on the command line.
type Directive int

const (
	DirectiveNone Directive = iota
	DirectiveRestartAfter
	DirectiveNoRestart
	DirectiveShutdownAfter
)

// Command-line tokens, compared case-insensitively.
const (
	TokenRestart   = "/uninstallrestart"
	TokenNoRestart = "/uninstallnorestart"
	TokenShutdown  = "/uninstallshutdown"
)

var tokenDirectives = map[string]Directive{
	TokenRestart:   DirectiveRestartAfter,
	TokenNoRestart: DirectiveNoRestart,
	TokenShutdown:  DirectiveShutdownAfter,
}

// ParseDirective reads the directive from argv[1], where argv[0] is the
// program path. Anything else, including a missing argument, is DirectiveNone.
func ParseDirective(argv []string) Directive {
	if len(argv) < 2 {
		return DirectiveNone
	}
	return ParseToken(argv[1])
}

// ParseToken maps a single token to its Directive.
func ParseToken(token string) Directive {
	if d, ok := tokenDirectives[strings.ToLower(token)]; ok {
		return d
	}
	return DirectiveNone
}

func (d Directive) String() string {
	switch d {
	case DirectiveRestartAfter:
		return "restart"
	case DirectiveNoRestart:
		return "norestart"
	case DirectiveShutdownAfter:
		return "shutdown"
	default:
		return "none"
	}
}

// DirectiveByName maps the short names used by the uninstall subcommand
// ("restart", "norestart", "shutdown") to a Directive.
func DirectiveByName(name string) (Directive, bool) {
	for _, d := range []Directive{DirectiveRestartAfter, DirectiveNoRestart, DirectiveShutdownAfter} {
		if strings.EqualFold(name, d.String()) {
			return d, true
		}
	}
	return DirectiveNone, false
}
