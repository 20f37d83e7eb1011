package internal

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/rios0rios0/wsrelease/internal/domain/commands"
	"github.com/rios0rios0/wsrelease/internal/infrastructure/controllers"
	"github.com/rios0rios0/wsrelease/internal/infrastructure/repositories"
)

// layers are registered bottom-up; each one only consumes what the previous ones provide.
var layers = []struct {
	name     string
	register func(*dig.Container) error
}{
	{"repositories", repositories.RegisterProviders},
	{"commands", commands.RegisterProviders},
	{"controllers", controllers.RegisterProviders},
}

// RegisterProviders registers every layer and the AppInternal with the DIG container.
// Settings are not provided here: they depend on the flags of the running subcommand.
func RegisterProviders(container *dig.Container) error {
	for _, layer := range layers {
		if err := layer.register(container); err != nil {
			return fmt.Errorf("failed to register %s: %w", layer.name, err)
		}
	}
	return container.Provide(NewAppInternal)
}
