package boot

import (
	"context"

	"github.com/natansdj/electives"
	"github.com/natansdj/electives/controller"
	"github.com/natansdj/electives/drivers"
	"github.com/natansdj/electives/frameworks"
	"github.com/natansdj/electives/health"
	"github.com/natansdj/electives/loader"
	"github.com/natansdj/electives/repository"
	"github.com/natansdj/electives/types"
)

// Bootstrap vars and configuration
func OnInit() *types.Config {
	loader.Environment()

	config := loader.Config()
	loader.Logger(&config.Environment)
	loader.Launching(config)

	return config
}

// Bootstrap the service and block until a shutdown signal. Returns the process exit code.
func OnMain(config *types.Config, waiter ...chan<- int) int {
	provider, err := drivers.Open(context.Background(), config)
	if err != nil {
		electives.LogE("Database: %s", err.Error())
		return 1
	}
	loader.AddStopper(provider.Disconnect)

	ctl := controller.New(
		repository.New(provider.Gorm, provider.Pool),
		health.NewDatabaseChecker(provider.Name, provider.Pool, config.Http.GetHealthTimeout()),
		provider.Pool,
	)
	ctl.Reviews = config.Http.ReviewRoutes

	if config.Http.Middleware == nil {
		config.Http.Middleware = controller.Middleware
	}
	config.Http.Router = ctl.Router

	server := frameworks.Http(&config.Http)
	loader.AddStopper(server.Disconnect)

	for _, wait := range waiter {
		wait <- int(1)
	}

	loader.WaitForExitSignal()

	ctx, cancel := context.WithTimeout(context.Background(), config.Http.GetShutdownGrace())
	defer cancel()

	return loader.OnShutdown(ctx)
}
