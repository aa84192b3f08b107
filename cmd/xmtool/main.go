// xmtool is a CLI utility for inspecting and rewriting xModel files.
package main

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/xmodel/internal/config"
	"github.com/Faultbox/xmodel/internal/logger"
	"github.com/Faultbox/xmodel/pkg/scene"
	"github.com/Faultbox/xmodel/pkg/xmodel"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	switch args[0] {
	case "help", "-h", "--help":
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	xmodel.SetLogger(logger.Named("xmodel"))

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(cfg, args)
	case "dump":
		err = cmdDump(cfg, args)
	case "verify":
		err = cmdVerify(cfg, args)
	case "check":
		err = cmdCheck(cfg, args)
	case "rewrite":
		err = cmdRewrite(cfg, args)
	case "textures":
		err = cmdTextures(cfg, args)
	case "extract", "x":
		err = cmdExtract(cfg, args)
	case "embed":
		err = cmdEmbed(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`xmtool - xModel file utility

Usage:
  xmtool [flags] <command> [arguments]

Commands:
  info <file.xmd>               Show structure counts and scene summary
  dump <file.xmd>               Print the graph as YAML, shared structures as refs
  verify <file.xmd>             Decode, re-encode and compare the bytes
  check <file.xmd>              Decode and report graph consistency problems
  rewrite <in.xmd> <out.xmd>    Decode and write a normalised copy
  textures <file.xmd>           List textures and their embedded images
  extract <file.xmd> [dir]      Write embedded textures to files
  embed <in.xmd> <out.xmd>      Embed the image files textures refer to
  config [path]                 Print the effective config or save it to path

Flags:
  -config <path>   Config file (default: ./xmtool.yaml, then the user config dir)
  -debug           Enable debug logging
  -log-file <path> Also write logs to a file
  -lenient         Accept streams with a missing or bad terminator
  -pools           Include pool and key values in dump output

Examples:
  xmtool info model.xmd
  xmtool -pools dump model.xmd > model.yaml
  xmtool -lenient rewrite broken.xmd fixed.xmd
  xmtool extract -format webp -max 256 model.xmd ./textures`)
}

func usage(format string) error {
	return fmt.Errorf("usage: xmtool %s", format)
}

func open(cfg *config.Config, path string) (*xmodel.Container, error) {
	c, err := xmodel.ReadFile(path, cfg.Codec.DecodeOptions())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	logger.Debug("decoded", zap.String("path", path), zap.String("container", c.Name))
	return c, nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return usage("info <file.xmd>")
	}
	c, err := open(cfg, args[0])
	if err != nil {
		return err
	}

	s := collectStats(c)
	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Container:  %q\n", c.Name)
	fmt.Printf("Time rate:  %g\n", c.TimeRate)
	fmt.Printf("Depth:      %d\n", s.depth)
	fmt.Printf("Vertices:   %d\n", s.vertices)
	fmt.Printf("Elements:   %d\n", s.elements)
	fmt.Println()
	fmt.Println("Structures by kind:")
	for _, k := range s.kinds() {
		fmt.Printf("  %-14s %d\n", k.tag, k.count)
	}

	if len(c.AnimationSets) > 0 {
		fmt.Println()
		fmt.Println("Animation sets:")
		for _, set := range c.AnimationSets {
			if set == nil {
				continue
			}
			fmt.Printf("  %-20q %d animations, duration %g\n", set.Name, len(set.Animations), scene.ClipDuration(set))
		}
	}
	return nil
}

func cmdDump(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return usage("dump <file.xmd>")
	}
	c, err := open(cfg, args[0])
	if err != nil {
		return err
	}
	return writeDump(os.Stdout, c, cfg.Dump)
}

func cmdVerify(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return usage("verify <file.xmd>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	c, err := xmodel.DecodeWithOptions(bytes.NewReader(data), cfg.Codec.DecodeOptions())
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	again, err := xmodel.Marshal(c)
	if err != nil {
		return fmt.Errorf("re-encoding %s: %w", args[0], err)
	}

	if off := firstDifference(data, again); off >= 0 {
		return fmt.Errorf("%s: re-encoded stream differs at byte %d (%d bytes read, %d written)",
			args[0], off, len(data), len(again))
	}
	fmt.Printf("%s: OK (%d bytes)\n", args[0], len(data))
	return nil
}

// firstDifference returns the offset of the first differing byte, or -1 when
// a and b are equal.
func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func cmdCheck(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return usage("check <file.xmd>")
	}
	c, err := open(cfg, args[0])
	if err != nil {
		return err
	}

	findings := multierr.Errors(xmodel.Validate(c))
	for _, f := range findings {
		fmt.Println(f)
	}
	if len(findings) > 0 {
		return fmt.Errorf("%s: %d problems found", args[0], len(findings))
	}
	fmt.Printf("%s: OK\n", args[0])
	return nil
}

func cmdRewrite(cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return usage("rewrite <in.xmd> <out.xmd>")
	}
	c, err := open(cfg, args[0])
	if err != nil {
		return err
	}
	n, err := xmodel.WriteFile(args[1], c)
	if err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}
	logger.Info("rewrote", zap.String("from", args[0]), zap.String("to", args[1]), zap.Int64("bytes", n))
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	switch len(args) {
	case 0:
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case 1:
		return cfg.SaveTo(args[0])
	}
	return usage("config [path]")
}
