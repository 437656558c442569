// Package config loads render/build settings from a TOML document: a
// flat struct with "Default is X." doc comments, a package-level
// default constructor, and a Load that decodes onto the default
// before validating.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/seanjames777/raytracer-sub000/kdtree"
	"github.com/seanjames777/raytracer-sub000/render"
)

func newErr(reason string) error { return fmt.Errorf("config: %s", reason) }

// RenderSettings is the on-disk (TOML) serialization of a render's
// tunables: the renderer's block/sample/recursion/shadow/occlusion
// knobs plus the KD-tree's SAH cost constants and recursion limits.
type RenderSettings struct {
	// BlockSize is the side length of a scheduling tile. Default is 16.
	BlockSize int `toml:"block_size"`
	// PixelSamples is S, the side of the SxS jittered sample grid per
	// pixel. Default is 2.
	PixelSamples int `toml:"pixel_samples"`
	// NumThreads is the render worker-pool size; 0 selects hardware
	// concurrency. Default is 0.
	NumThreads int `toml:"num_threads"`
	// MaxDepth hard-caps ray-buffer recursion. Default is 20.
	MaxDepth int `toml:"max_depth"`
	// ShadowSamples is n, the side of the n×n grid of soft-shadow rays
	// averaged per light. Default is 1.
	ShadowSamples int `toml:"shadow_samples"`
	// OcclusionSamples is the ambient-occlusion ray count; 0 disables
	// ambient occlusion. Default is 0.
	OcclusionSamples int `toml:"occlusion_samples"`
	// OcclusionDistance caps ambient-occlusion ray length. Default is 1e30.
	OcclusionDistance float32 `toml:"occlusion_distance"`

	// PlanarMode is one of "auto", "left", "right", "both": which
	// child a triangle lying exactly on a KD split plane is assigned
	// to. Default is "auto".
	PlanarMode string `toml:"planar_mode"`
	// KTraversal is the SAH traversal-step cost constant. Default is 1.
	KTraversal float32 `toml:"k_traversal"`
	// KIntersect is the SAH triangle-intersection cost constant.
	// Default is 1.5.
	KIntersect float32 `toml:"k_intersect"`
	// KDMaxDepth caps KD-tree recursion regardless of cost. Default is 23.
	KDMaxDepth int `toml:"kd_max_depth"`
	// KDMinTriangles stops KD-tree recursion once a node holds this
	// few or fewer triangles. Default is 4.
	KDMinTriangles int `toml:"kd_min_triangles"`
}

// DefaultRenderSettings returns the suggested-default settings
// document, matching render.DefaultConfig and kdtree.DefaultBuildConfig.
func DefaultRenderSettings() RenderSettings {
	rc := render.DefaultConfig()
	bc := rc.Build
	return RenderSettings{
		BlockSize:         rc.BlockSize,
		PixelSamples:      rc.PixelSamples,
		NumThreads:        rc.NumWorkers,
		MaxDepth:          rc.MaxDepth,
		ShadowSamples:     rc.ShadowSamples,
		OcclusionSamples:  rc.OcclusionSamples,
		OcclusionDistance: rc.OcclusionDistance,
		PlanarMode:        "auto",
		KTraversal:        bc.KTraversal,
		KIntersect:        bc.KIntersect,
		KDMaxDepth:        bc.MaxDepth,
		KDMinTriangles:    bc.MinTriangles,
	}
}

// Load reads a TOML document from path, layered on top of
// DefaultRenderSettings, and validates the result.
func Load(path string) (RenderSettings, error) {
	s := DefaultRenderSettings()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return RenderSettings{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return RenderSettings{}, err
	}
	return s, nil
}

func (s *RenderSettings) validate() error {
	if s.BlockSize <= 0 {
		return newErr("block_size must be positive")
	}
	if s.PixelSamples <= 0 || s.PixelSamples > render.MaxPixelSamples {
		return newErr(fmt.Sprintf("pixel_samples must be in [1, %d]", render.MaxPixelSamples))
	}
	if s.MaxDepth <= 0 || s.MaxDepth > render.MaxRecursionDepth {
		return newErr(fmt.Sprintf("max_depth must be in [1, %d]", render.MaxRecursionDepth))
	}
	if _, err := s.planarMode(); err != nil {
		return err
	}
	return nil
}

func (s *RenderSettings) planarMode() (kdtree.PlanarMode, error) {
	switch s.PlanarMode {
	case "", "auto":
		return kdtree.PlanarAuto, nil
	case "left":
		return kdtree.PlanarLeft, nil
	case "right":
		return kdtree.PlanarRight, nil
	case "both":
		return kdtree.PlanarBoth, nil
	default:
		return 0, newErr(fmt.Sprintf("planar_mode %q is not one of auto, left, right, both", s.PlanarMode))
	}
}

// RenderConfig translates s into a render.Config ready to pass to
// render.New, attaching logger to both the renderer and its KD-tree
// build configuration.
func (s *RenderSettings) RenderConfig(logger zerolog.Logger) (render.Config, error) {
	if err := s.validate(); err != nil {
		return render.Config{}, err
	}
	planar, err := s.planarMode()
	if err != nil {
		return render.Config{}, err
	}

	build := kdtree.DefaultBuildConfig()
	build.KTraversal = s.KTraversal
	build.KIntersect = s.KIntersect
	build.MaxDepth = s.KDMaxDepth
	build.MinTriangles = s.KDMinTriangles
	build.PlanarMode = planar
	build.Logger = logger

	cfg := render.DefaultConfig()
	cfg.BlockSize = s.BlockSize
	cfg.PixelSamples = s.PixelSamples
	cfg.NumWorkers = s.NumThreads
	cfg.MaxDepth = s.MaxDepth
	cfg.ShadowSamples = s.ShadowSamples
	cfg.OcclusionSamples = s.OcclusionSamples
	cfg.OcclusionDistance = s.OcclusionDistance
	cfg.Build = build
	cfg.Logger = logger
	return cfg, nil
}
