package sim

import (
	"log"
)

// LogHookBase holds the logger of a hook that writes what it sees as text.
// Hooks embed it and implement Func.
type LogHookBase struct {
	*log.Logger
}
