// Command layoutprobe checks the shared layouts against a real GL driver.
// It compiles the generated GLSL, compares the offsets the driver reports
// with the Go layout, then round-trips a vertex buffer and several frames of
// forcing constants through GPU memory and requires bit equality.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"fluid-demo/config"
	"fluid-demo/core"
	"fluid-demo/internal/logging"
	"fluid-demo/internal/opengl"
	"fluid-demo/math"
	"fluid-demo/shadertypes"
)

type probe struct {
	cfg      config.Config
	log      *slog.Logger
	failures int
}

func (p *probe) fail(msg string, args ...any) {
	p.failures++
	p.log.Error(msg, args...)
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	timeout := flag.Duration("timeout", 5*time.Second, "fence wait timeout")
	debug := flag.Bool("debug", false, "request a debug context")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetLogger(logger)

	ctxCfg := core.DefaultContextConfig()
	ctxCfg.Debug = *debug
	glctx, err := core.NewContext(ctxCfg)
	if err != nil {
		logger.Error("create GL context", "err", err)
		os.Exit(1)
	}
	defer glctx.Destroy()
	logger.Info("GL context", "renderer", glctx.Renderer, "version", glctx.Version)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	p := &probe{cfg: cfg, log: logger}
	if err := p.run(ctx); err != nil {
		logger.Error("probe aborted", "err", err)
		os.Exit(1)
	}
	if p.failures > 0 {
		logger.Error("layout probe failed", "failures", p.failures)
		os.Exit(1)
	}
	logger.Info("layout probe passed", "grid", cfg.GridSize, "frames", cfg.FramesInFlight)
}

func (p *probe) run(ctx context.Context) error {
	prog, err := opengl.NewLayoutProgram(p.cfg.GridSize, p.cfg.ForcingBinding)
	if err != nil {
		return err
	}
	defer gl.DeleteProgram(prog)

	if err := p.checkUniformBlock(prog); err != nil {
		return err
	}
	p.checkAttributes(prog)
	if err := p.checkVertexBuffer(); err != nil {
		return err
	}
	if err := p.checkConstants(ctx); err != nil {
		return err
	}
	return p.checkGridTexture()
}

func (p *probe) checkUniformBlock(prog uint32) error {
	want := shadertypes.ForcingConstantLayout()
	got, err := opengl.QueryUniformBlock(prog, want.Name)
	if err != nil {
		return err
	}
	// std140 rounds the block up to a vec4 multiple.
	if got.DataSize < want.Size {
		p.fail("uniform block too small", "block", want.Name, "want", want.Size, "got", got.DataSize)
	}
	for _, f := range want.Fields {
		off, ok := got.Offsets[f.Name]
		switch {
		case !ok:
			p.fail("uniform member inactive", "block", want.Name, "member", f.Name)
		case off != f.Offset:
			p.fail("uniform member offset", "block", want.Name, "member", f.Name, "want", f.Offset, "got", off)
		default:
			p.log.Debug("uniform member", "block", want.Name, "member", f.Name, "offset", off)
		}
	}
	return nil
}

func (p *probe) checkAttributes(prog uint32) {
	attrs := shadertypes.VertexAttributes()
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	locs := opengl.QueryAttributes(prog, names)
	for _, a := range attrs {
		if got := locs[a.Name]; got != int32(a.Location) {
			p.fail("vertex attribute location", "name", a.Name, "want", a.Location, "got", got)
		}
	}
}

func (p *probe) checkVertexBuffer() error {
	quad := shadertypes.FullscreenQuad()
	vb, err := opengl.NewVertexBuffer(quad)
	if err != nil {
		return err
	}
	defer vb.Delete()

	got, err := vb.Bytes()
	if err != nil {
		return err
	}
	if want := shadertypes.EncodeVertices(nil, quad); !bytes.Equal(got, want) {
		p.fail("vertex buffer contents", "want", fmt.Sprintf("%x", want), "got", fmt.Sprintf("%x", got))
	}
	decoded, err := shadertypes.DecodeVertices(got)
	if err != nil {
		return err
	}
	for i := range quad {
		if decoded[i] != quad[i] {
			p.fail("vertex decode", "index", i, "want", quad[i], "got", decoded[i])
		}
	}
	return nil
}

func (p *probe) checkConstants(ctx context.Context) error {
	cb, err := opengl.NewConstantBuffer(p.cfg.ForcingBinding, p.cfg.FramesInFlight, p.cfg.UniformAlign)
	if err != nil {
		return err
	}
	defer cb.Delete()

	// Two laps around the ring so every slot is reused behind a fence. Each
	// frame drags a segment a little further along the grid diagonal.
	laps := 2 * cb.Frames()
	corner := math.NewVec2(p.cfg.GridSize.Float32(), p.cfg.GridSize.Float32())
	for frame := 0; frame < laps; frame++ {
		a := math.Vec2Zero.Lerp(corner, float32(frame)/float32(laps))
		b := a.Lerp(corner, 0.5)
		want := shadertypes.ForcingConstant{A: a, B: b, Force: b.Sub(a).Normalize()}
		p.log.Debug("forcing segment", "frame", frame, "length", a.Distance(b))

		slot, err := cb.Write(ctx, want)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := cb.Submitted(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}

		got, err := cb.Slot(slot.Index)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		wantBytes, _ := want.MarshalBinary()
		gotBytes, _ := got.MarshalBinary()
		if !bytes.Equal(wantBytes, gotBytes) {
			p.fail("forcing constant readback", "frame", frame, "slot", slot.Index, "want", fmt.Sprintf("%x", wantBytes), "got", fmt.Sprintf("%x", gotBytes))
			continue
		}
		p.log.Debug("forcing constant", "frame", frame, "slot", slot.Index, "offset", slot.Offset)
	}
	return nil
}

func (p *probe) checkGridTexture() error {
	tex, err := opengl.NewGridTexture(p.cfg.GridSize)
	if err != nil {
		return err
	}
	defer tex.Delete()

	n := p.cfg.GridSize.Cells()
	if w, h := tex.Size(); w != n || h != n {
		p.fail("grid texture size", "want", n, "width", w, "height", h)
	}
	return nil
}
