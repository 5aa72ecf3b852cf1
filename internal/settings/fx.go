package settings

import (
	"go.uber.org/fx"

	"github.com/orwelltherazer/statelec/internal/cache"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
	"github.com/orwelltherazer/statelec/internal/settings/service"
)

var Module = fx.Module("settings.service",
	fx.Provide(func() cache.Cache[string, settingsdomain.TariffConfig] {
		return cache.NewTTLCache[string, settingsdomain.TariffConfig]()
	}),
	fx.Provide(service.NewService),
)
