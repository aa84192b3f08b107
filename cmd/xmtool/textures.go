package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/xmodel/internal/config"
	"github.com/Faultbox/xmodel/internal/logger"
	"github.com/Faultbox/xmodel/internal/texture"
	"github.com/Faultbox/xmodel/pkg/scene"
	"github.com/Faultbox/xmodel/pkg/xmodel"
)

func cmdTextures(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return usage("textures <file.xmd>")
	}
	c, err := open(cfg, args[0])
	if err != nil {
		return err
	}

	textures := scene.Textures(c)
	for _, t := range textures {
		detail := "not embedded"
		if len(t.Data) > 0 {
			if info, err := texture.Probe(t); err != nil {
				detail = fmt.Sprintf("%d bytes, %v", len(t.Data), err)
			} else {
				detail = info.String()
			}
		}
		fmt.Printf("  %-20q %-32s %s\n", t.Name, t.Ref, detail)
	}
	fmt.Fprintf(os.Stderr, "\n(%d textures)\n", len(textures))
	return nil
}

func cmdExtract(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	format := fs.String("format", "", "Convert to png or webp (default: keep embedded bytes)")
	maxSize := fs.Int("max", 0, "Scale converted images to fit in NxN (0 = keep size)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return usage("extract [-format png|webp] [-max N] <file.xmd> [output_dir]")
	}
	outputDir := "."
	if fs.NArg() > 1 {
		outputDir = fs.Arg(1)
	}

	c, err := open(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	extracted := 0
	for _, t := range scene.Textures(c) {
		if len(t.Data) == 0 {
			continue
		}
		outputPath := filepath.Join(outputDir, texture.FileName(t, *format))
		if err := extractTexture(t, outputPath, *format, *maxSize); err != nil {
			logger.Warn("texture not extracted", zap.String("texture", t.Name), zap.Error(err))
			continue
		}
		fmt.Printf("Extracted: %s\n", outputPath)
		extracted++
	}

	fmt.Fprintf(os.Stderr, "\nExtracted %d textures\n", extracted)
	return nil
}

func extractTexture(t *xmodel.Texture, path, format string, maxSize int) (err error) {
	if format == "" {
		return os.WriteFile(path, t.Data, 0644)
	}

	img, _, decodeErr := texture.Decode(t)
	if decodeErr != nil {
		return decodeErr
	}
	f, createErr := os.Create(path)
	if createErr != nil {
		return createErr
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return texture.Encode(f, texture.Fit(img, maxSize), format)
}

func cmdEmbed(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)
	dir := fs.String("dir", "", "Directory texture paths are relative to (default: the input file's)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usage("embed [-dir path] <in.xmd> <out.xmd>")
	}
	in, out := fs.Arg(0), fs.Arg(1)
	if *dir == "" {
		*dir = filepath.Dir(in)
	}

	c, err := open(cfg, in)
	if err != nil {
		return err
	}

	embedded := 0
	for _, t := range scene.Textures(c) {
		if len(t.Data) > 0 || t.Ref == "" {
			continue
		}
		info, err := texture.Embed(t, *dir)
		if err != nil {
			logger.Warn("texture not embedded", zap.String("texture", t.Name), zap.String("ref", t.Ref), zap.Error(err))
			continue
		}
		logger.Debug("embedded", zap.String("texture", t.Name), zap.Stringer("image", info))
		embedded++
	}

	n, err := xmodel.WriteFile(out, c)
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info("embedded textures", zap.Int("count", embedded), zap.String("to", out), zap.Int64("bytes", n))
	return nil
}
