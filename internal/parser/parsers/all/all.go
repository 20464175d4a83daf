// Package all imports all available bookmaker profiles for side-effect registration.
//
// Import this package from your main to ensure all bookmakers are registered:
//
//	import _ "github.com/Vodeneev/footodds/internal/parser/parsers/all"
package all

import (
	_ "github.com/Vodeneev/footodds/internal/parser/parsers/rabona"
	_ "github.com/Vodeneev/footodds/internal/parser/parsers/tipico"
)
