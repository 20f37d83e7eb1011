package commands

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// PublishDeep exports publisher.publishDeep for testing with a fresh publish set.
func PublishDeep(
	ctx context.Context,
	buildSystem repositories.BuildSystemRepository,
	workspace *entities.Workspace,
	root *entities.Package,
) error {
	return newPublisher(buildSystem, workspace, "", false, map[string]*semver.Version{}).publishDeep(ctx, root)
}

// Publisher exports publisher for testing repeated calls on one publish set.
type Publisher = publisher

// NewPublisher exports newPublisher for testing.
var NewPublisher = newPublisher //nolint:gochecknoglobals // test export

// PublishDeepWith exports publisher.publishDeep for testing.
func PublishDeepWith(ctx context.Context, p *Publisher, pkg *entities.Package) error {
	return p.publishDeep(ctx, pkg)
}

// TrimRequirement exports trimRequirement for testing.
var TrimRequirement = trimRequirement //nolint:gochecknoglobals // test export

// Presentation exports presentation for testing.
var Presentation = presentation //nolint:gochecknoglobals // test export
