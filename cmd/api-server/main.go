// Command api-server runs the shop HTTP API.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	shopapp "github.com/xenking/shopline/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := shopapp.LoadConfig()
		if err != nil {
			return err
		}
		return shopapp.Run(ctx, lg, m, cfg)
	})
}
