package reading

import (
	"go.uber.org/fx"

	"github.com/orwelltherazer/statelec/internal/reading/repository"
)

var Module = fx.Module("reading.repository",
	fx.Provide(repository.NewRepository),
)
