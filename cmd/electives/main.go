package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/natansdj/electives"
	"github.com/natansdj/electives/boot"
	"github.com/natansdj/electives/client"
	"github.com/natansdj/electives/health"
	"github.com/natansdj/electives/loader"
	"github.com/natansdj/electives/types"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "probe" {
		os.Exit(probe(os.Args[2:]))
	}

	flags := flag.NewFlagSet("electives", flag.ExitOnError)
	flags.StringVar(&loader.EnvFile, "env", "", "path to the .env file")
	flags.Parse(serveArgs(os.Args[1:]))

	config := boot.OnInit()
	os.Exit(boot.OnMain(config))
}

func serveArgs(args []string) []string {
	if len(args) > 0 && args[0] == "serve" {
		return args[1:]
	}
	return args
}

// probe asks a running instance for /health, for use as a container health check
func probe(args []string) int {
	flags := flag.NewFlagSet("probe", flag.ExitOnError)
	addr := flags.String("addr", "http://127.0.0.1:"+probePort(), "base URL of the service")
	timeout := flags.Duration("timeout", 5*time.Second, "overall probe timeout")
	flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := client.New(*addr).Health(ctx)
	if err != nil {
		electives.LogE("probe: %s", err.Error())
		return 1
	}

	fmt.Printf("%s (%dms)\n", result.Status, result.LatencyMs)
	if result.Status != health.StatusHealthy {
		return 1
	}
	return 0
}

func probePort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return types.SERVER_HTTP_PORT
}
