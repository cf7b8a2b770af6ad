package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"fluid-demo/config"
	"fluid-demo/internal/headerscan"
	"fluid-demo/internal/logging"
	fluidio "fluid-demo/io"
	"fluid-demo/shadertypes"
	"fluid-demo/shadertypes/codegen"
)

// output opens path for writing, or stdout when path is empty or "-".
func output(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func runGen(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	langName := fs.String("lang", string(codegen.LangMetal), "target language: metal, glsl or wgsl")
	grid := gridFlag(fs, cfg)
	binding := fs.Uint("binding", uint(cfg.ForcingBinding), "ForcingConstant binding index")
	namespace := fs.String("namespace", codegen.DefaultOptions().Namespace, "Metal namespace")
	out := fs.String("out", "", "output file (default stdout)")
	_ = fs.Parse(args)

	lang, err := codegen.ParseLang(*langName)
	if err != nil {
		return err
	}
	opts := codegen.DefaultOptions()
	opts.GridSize = *grid
	opts.Binding = uint32(*binding)
	opts.Namespace = *namespace

	f, closeFn, err := output(*out)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := codegen.Generate(w, lang, opts); err != nil {
		closeFn()
		return err
	}
	if err := w.Flush(); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	logging.Logger().Info("generated shader types", "lang", lang, "grid", opts.GridSize, "out", *out)
	return nil
}

func runCheck(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	grid := gridFlag(fs, cfg)
	_ = fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		files = cfg.Headers
	}
	if len(files) == 0 {
		return errors.New("no header files given")
	}

	log := logging.Logger()
	headers := make([]*headerscan.Header, 0, len(files))
	for _, path := range files {
		h, err := headerscan.ScanFile(path)
		if err != nil {
			return err
		}
		log.Debug("scanned header", "file", path, "grid", h.GridSize, "structs", len(h.Structs), "alternatives", h.Alternatives)
		headers = append(headers, h)
	}

	drifts := headerscan.Compare(headers)
	layouts := shadertypes.Layouts()
	for _, h := range headers {
		drifts = append(drifts, headerscan.CheckLayouts(h, layouts, *grid)...)
	}
	for _, d := range drifts {
		fmt.Println(d)
	}
	if len(drifts) > 0 {
		log.Error("shader headers drifted", "files", len(headers), "drifts", len(drifts))
		return errDrift
	}
	log.Info("shader headers agree", "files", len(headers), "grid", *grid)
	return nil
}

func runDescribe(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "write a layout report")
	grid := gridFlag(fs, cfg)
	out := fs.String("out", "", "output file (default stdout)")
	_ = fs.Parse(args)

	report, err := fluidio.NewLayoutReport(*grid)
	if err != nil {
		return err
	}
	if *asJSON && *out != "" && *out != "-" {
		return fluidio.SaveLayoutReport(*out, report)
	}

	f, closeFn, err := output(*out)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	} else {
		err = describeText(f, report)
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}

func describeText(f *os.File, r *fluidio.LayoutReport) error {
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "grid size: %s (%d cells)\n", r.GridSize, r.GridSize.Cells())
	for _, l := range r.Layouts {
		fmt.Fprintf(w, "\n%s: size %d, align %d\n", l.Name, l.Size, l.Align)
		for _, fld := range l.Fields {
			fmt.Fprintf(w, "  %-8s offset %2d  size %2d  %s%d\n", fld.Name, fld.Offset, fld.Size, fld.Scalar, fld.Components)
		}
	}
	return w.Flush()
}

func runDiff(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	grid := gridFlag(fs, cfg)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: shadertypes diff <report.json>")
	}

	saved, err := fluidio.LoadLayoutReport(fs.Arg(0))
	if err != nil {
		return err
	}
	current, err := fluidio.NewLayoutReport(*grid)
	if err != nil {
		return err
	}
	diffs := fluidio.Diff(saved, current)
	for _, d := range diffs {
		fmt.Println(d)
	}
	if len(diffs) > 0 {
		logging.Logger().Error("layout report differs", "report", fs.Arg(0), "differences", len(diffs))
		return errDrift
	}
	return nil
}

func runDump(_ config.Config, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	_ = fs.Parse(args)
	for _, s := range fluidio.ReferenceSamples() {
		fmt.Printf("%s (%d bytes)\n%s", s.Name, len(s.Bytes), hex.Dump(s.Bytes))
	}
	return nil
}

func runGLTF(_ config.Config, args []string) error {
	fs := flag.NewFlagSet("gltf", flag.ExitOnError)
	out := fs.String("out", "quad.glb", "output .glb file")
	name := fs.String("name", "fullscreen_quad", "mesh name")
	_ = fs.Parse(args)

	if err := fluidio.ExportGLB(*out, *name, shadertypes.FullscreenQuad()); err != nil {
		return err
	}
	logging.Logger().Info("exported quad", "out", *out)
	return nil
}
