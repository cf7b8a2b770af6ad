// Command shadertypes generates, describes and checks the shader-side copies
// of the fluid demo's shared layouts.
//
//	shadertypes gen -lang metal -out Shaders/ShaderTypes.h
//	shadertypes check FluidDemo/MyShaderTypes.hpp HelloMetal/MyShaderTypes.hpp
//	shadertypes describe -json -out fluid.layout.json
//	shadertypes diff fluid.layout.json
//	shadertypes dump
//	shadertypes gltf -out quad.glb
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"fluid-demo/config"
	"fluid-demo/internal/logging"
	"fluid-demo/shadertypes"
)

// errDrift makes the process exit with status 1 without an extra message.
var errDrift = errors.New("layouts drifted")

type command struct {
	name  string
	usage string
	run   func(cfg config.Config, args []string) error
}

var commands = []command{
	{"gen", "write shader declarations", runGen},
	{"check", "compare shader headers with each other and the Go layout", runCheck},
	{"describe", "print the layouts (-json for a report)", runDescribe},
	{"diff", "compare a saved report with the current build", runDiff},
	{"dump", "hex dump of the reference payloads", runDump},
	{"gltf", "export the fullscreen quad as .glb", runGLTF},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: shadertypes [-config file] <command> [flags]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", c.name, c.usage)
	}
}

func main() {
	global := flag.NewFlagSet("shadertypes", flag.ExitOnError)
	global.Usage = usage
	configPath := global.String("config", "", "YAML config file")
	_ = global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		usage()
		os.Exit(2)
	}

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

	name, args := global.Arg(0), global.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(cfg, args); err != nil {
			if !errors.Is(err, errDrift) {
				fmt.Fprintf(os.Stderr, "shadertypes %s: %v\n", name, err)
			}
			os.Exit(1)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
	usage()
	os.Exit(2)
}

// gridFlag registers -grid with the config value as default.
func gridFlag(fs *flag.FlagSet, cfg config.Config) *shadertypes.GridSize {
	g := cfg.GridSize
	fs.TextVar(&g, "grid", cfg.GridSize, "grid size (128, 256, 320 or 512)")
	return &g
}
