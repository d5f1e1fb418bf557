package media

import (
	"go.uber.org/fx"
)

var Module = fx.Module("media_repository",
	fx.Provide(
		fx.Annotate(
			NewPgx,
			fx.As(new(Repository)),
		),
	),
)
