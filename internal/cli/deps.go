package cli

import (
	"os"

	"golang.org/x/term"

	"github.com/scaffold-labs/scaffold/internal/config"
	"github.com/scaffold-labs/scaffold/internal/dispatch"
	"github.com/scaffold-labs/scaffold/internal/install"
	"github.com/scaffold-labs/scaffold/internal/registry"
	"github.com/scaffold-labs/scaffold/internal/runtime"
)

// childHomeEnv tells helper packages where the CLI keeps its files.
const childHomeEnv = "CLI_HOME_PATH"

func newRegistryClient() *registry.Client {
	return registry.New(config.Registry(),
		registry.WithTimeout(config.RegistryTimeout()),
		registry.WithLogger(logger),
	)
}

func newDispatcher() *dispatch.Dispatcher {
	client := newRegistryClient()

	engineOpts := []install.Option{install.WithLogger(logger)}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		engineOpts = append(engineOpts, install.WithProgress(os.Stderr))
	}
	if config.InstallDeps() {
		engineOpts = append(engineOpts, install.WithDependencyInstaller(&install.NpmInstaller{Registry: config.Registry()}))
	}
	engine := install.NewTarballEngine(client, engineOpts...)

	rt := &runtime.NodeRuntime{
		Logger: logger,
		Env:    map[string]string{childHomeEnv: config.Dir()},
	}

	return dispatch.New(client, engine, rt,
		dispatch.WithLogger(logger),
		dispatch.WithLockTimeout(config.LockTimeout()),
	)
}
