package build

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/eugenenazirov/keyprops/internal/config"
	"github.com/eugenenazirov/keyprops/internal/properties"
	"github.com/eugenenazirov/keyprops/internal/signing"
)

// Plan is the resolved signing setup for one build type.
type Plan struct {
	BuildType       string         `yaml:"build_type"`
	MinifyEnabled   bool           `yaml:"minify_enabled"`
	ShrinkResources bool           `yaml:"shrink_resources"`
	Signing         signing.Config `yaml:"signing"`
	FellBack        bool           `yaml:"fell_back_to_debug"`
}

// Resolver turns build types into plans using a loaded descriptor.
type Resolver struct {
	cfg    config.Config
	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil logger disables logging.
func NewResolver(cfg config.Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// BuildTypes returns the declared build type names in sorted order.
func (r *Resolver) BuildTypes() []string {
	names := make([]string, 0, len(r.cfg.BuildTypes))
	for name := range r.cfg.BuildTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve selects the signing identity for buildType. The release identity is
// only constructed when the properties file exists; otherwise the debug
// identity is used if fallback is enabled, or ErrReleaseSigningUnavailable is returned.
func (r *Resolver) Resolve(buildType string) (Plan, error) {
	bt, ok := r.cfg.BuildTypes[buildType]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownBuildType, buildType)
	}

	plan := Plan{
		BuildType:       buildType,
		MinifyEnabled:   bt.MinifyEnabled,
		ShrinkResources: bt.ShrinkResources,
	}

	if bt.SigningConfig == signing.DebugName {
		debug := signing.Debug(r.cfg.DebugKeystore)
		plan.Signing = debug
		r.logger.Debug("using debug signing", zap.String("build_type", buildType), zap.Object("signing", debug))
		return plan, nil
	}

	path := r.cfg.PropertiesPath()
	props, found, err := r.Properties()
	if err != nil {
		return Plan{}, err
	}

	if !found {
		if !r.cfg.FallbackToDebug {
			return Plan{}, fmt.Errorf("%w: %s", ErrReleaseSigningUnavailable, path)
		}
		debug := signing.Debug(r.cfg.DebugKeystore)
		r.logger.Warn("properties file not found, falling back to debug signing",
			zap.String("build_type", buildType),
			zap.String("path", path),
		)
		plan.Signing = debug
		plan.FellBack = true
		return plan, nil
	}

	release, err := signing.FromProperties(signing.ReleaseName, props, r.cfg.AppPath())
	if err != nil {
		return Plan{}, fmt.Errorf("release signing config: %w", err)
	}
	r.logger.Info("using release signing",
		zap.String("build_type", buildType),
		zap.String("path", path),
		zap.Int("keys", props.Len()),
		zap.Object("signing", release),
	)
	plan.Signing = release
	return plan, nil
}

// Properties loads the raw properties file named by the descriptor.
func (r *Resolver) Properties() (*properties.Properties, bool, error) {
	path := r.cfg.PropertiesPath()
	props, found, err := properties.Load(path)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", path, err)
	}
	return props, found, nil
}
