package metrics

import "go.uber.org/fx"

// Module provides the process wide collectors.
var Module = fx.Provide(New)
