package broadcast

import (
	"github.com/google/wire"
)

var HubSet = wire.NewSet(
	NewHub,
)
