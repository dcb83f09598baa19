// Command deformdemo animates a procedural skinned tube and writes one
// wireframe image per frame.
//
// Every frame is an independent mesh deformation; all frames are submitted
// to a single job group, so they are skinned in parallel. With -gpu the
// frames are deformed into vertex buffers on a noop GPU device.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/deform"
	"github.com/gogpu/deform/gpu"
	"github.com/gogpu/deform/internal/config"
	"github.com/gogpu/deform/internal/meshgen"
	"github.com/gogpu/deform/internal/preview"
)

func main() {
	var (
		configPath = flag.String("config", "", "JSON config file")
		outputDir  = flag.String("out", "", "output directory")
		format     = flag.String("format", "", "image format: png, webp or tga")
		frames     = flag.Int("frames", 0, "number of frames")
		workers    = flag.Int("workers", 0, "worker goroutines")
		backend    = flag.String("backend", "", "skinning backend: auto, generic, sse2, neon or vfp")
		useGPU     = flag.Bool("gpu", false, "deform into vertex buffers on a noop GPU device")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	deform.SetLogger(log)

	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Error("load config", "err", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir: *outputDir,
		Format:    *format,
		Frames:    *frames,
		Workers:   *workers,
		Backend:   *backend,
		GPU:       *useGPU,
	})

	if err := run(cfg, log); err != nil {
		log.Error("deformdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b, _ := cfg.SkinBackend()
	if err := deform.UseBackend(b); err != nil {
		return err
	}
	mode, _ := cfg.NormalizeMode()

	tube, err := meshgen.NewTube(meshgen.Options{
		Rings: cfg.Rings, Sides: cfg.Sides, Bones: cfg.Bones,
		Radius: cfg.Radius, Length: cfg.Length,
	})
	if err != nil {
		return err
	}
	influences, err := tube.InfluencesFor(cfg.BonesPerVertex)
	if err != nil {
		return err
	}
	bulge := tube.BlendShapes.ChannelIndex(meshgen.ChannelBulge)
	pinch := tube.BlendShapes.ChannelIndex(meshgen.ChannelPinch)

	// One mesh description per frame.
	infos := make([]*deform.SkinMeshInfo, cfg.Frames)
	for f := range infos {
		phase := 2 * math.Pi * float64(f) / float64(cfg.Frames)
		palette := make([]deform.Matrix4, tube.Bones)
		if err := tube.Pose(palette, cfg.Bend*float32(math.Sin(phase))); err != nil {
			return err
		}
		weights := make([]float32, len(tube.BlendShapes.Channels))
		weights[bulge] = cfg.Bulge * float32(0.5-0.5*math.Cos(phase))
		weights[pinch] = float32(max(0, math.Sin(phase)))

		var out []byte
		if !cfg.GPU {
			out = make([]byte, tube.VertexCount*meshgen.Stride)
		}
		info := tube.Info(out, influences, palette, weights)
		info.Normalize = mode
		infos[f] = info
	}
	if err := infos[0].Validate(); err != nil {
		return fmt.Errorf("tube mesh: %w", err)
	}

	// Destinations: vertex buffers when deforming for the GPU.
	dsts := make([]deform.Destination, len(infos))
	var buffers []*gpu.VertexBuffer
	if cfg.GPU {
		dev, err := gpu.NewNoopDevice()
		if err != nil {
			return err
		}
		defer dev.Close()
		for f, info := range infos {
			vb, err := dev.NewMeshBuffer(fmt.Sprintf("frame%03d", f), info)
			if err != nil {
				return err
			}
			defer vb.Destroy()
			buffers = append(buffers, vb)
			dsts[f] = vb
		}
	}

	start := time.Now()
	g := deform.BeginJobs(len(infos), deform.WithWorkers(cfg.Workers), deform.WithLogger(log))
	for f, info := range infos {
		if !g.Submit(info, dsts[f]) {
			log.Warn("frame skipped", "frame", f)
		}
	}
	if err := g.End(); err != nil {
		return err
	}
	log.Info("deformed",
		"frames", len(infos),
		"vertices", tube.VertexCount,
		"backend", deform.ActiveBackend().String(),
		"bonesPerVertex", influences.BonesPerVertex(),
		"gpu", cfg.GPU,
		"elapsed", time.Since(start))

	// Images.
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	positions := make([][]deform.Vec3, len(infos))
	var bounds preview.Bounds
	for f, info := range infos {
		buf := info.Out
		if cfg.GPU {
			buf = buffers[f].Contents()
		}
		positions[f] = meshgen.Positions(buf, meshgen.Stride, tube.VertexCount)
		fb := preview.BoundsOf(positions[f], tube.Radius)
		if f == 0 {
			bounds = fb
		} else {
			bounds = bounds.Union(fb)
		}
	}

	opts := preview.DefaultOptions()
	opts.Size = cfg.ImageSize
	opts.Supersample = cfg.Supersample
	for f := range infos {
		opts.Label = fmt.Sprintf("frame %d/%d  %s", f+1, len(infos), deform.ActiveBackend())
		img := preview.Render(positions[f], tube.Edges, bounds, opts)
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("frame%03d.%s", f, cfg.Format))
		if err := preview.Save(path, img); err != nil {
			return err
		}
		log.Debug("frame written", "path", path)
	}
	log.Info("images written", "dir", cfg.OutputDir, "format", cfg.Format)
	return nil
}
