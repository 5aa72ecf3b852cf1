package indicator

import (
	"go.uber.org/fx"

	"github.com/orwelltherazer/statelec/internal/indicator/service"
)

var Module = fx.Module("indicator",
	fx.Provide(service.NewService),
)
