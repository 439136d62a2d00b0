package app

import (
	"github.com/buildstation/voidmap/internal/appcontext"
)

// Interface is an alias to the shared appcontext.Interface so command
// packages and the app package agree on one definition.
type Interface = appcontext.Interface

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)
