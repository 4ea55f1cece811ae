package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/setanarut/colorquant"
	"github.com/setanarut/colorquant/utils"
)

var cli struct {
	Verbose bool `help:"Enable debug logging." short:"v"`

	Reduce  ReduceCmd  `cmd:"" help:"Reduce an image's palette and write the reduced image."`
	Preview PreviewCmd `cmd:"" help:"Extract a quick preview palette without reducing."`
}

type ReduceCmd struct {
	Input       string `arg:"" help:"Input image (png, jpeg, gif, bmp, tiff, webp)." type:"existingfile"`
	Out         string `help:"Reduced image output path." default:"reduced.png"`
	Strategy    string `help:"Reduction strategy." enum:"alpha_kmeans,luminance_kmeans,auto_adaptive" default:"alpha_kmeans"`
	K           int    `help:"Clusters per alpha layer (alpha_kmeans)." default:"16"`
	KLuminance  int    `help:"Luminance group count (luminance_kmeans)." name:"k-luminance" default:"16"`
	KColor      int    `help:"Color clusters per luminance group (luminance_kmeans)." name:"k-color" default:"16"`
	MaxClusters int    `help:"Cluster search bound (auto_adaptive)." name:"max-clusters" default:"32"`
	Swatch      string `help:"Also write a palette swatch PNG to this path." optional:""`
	Pal         string `help:"Also write the palette as a RIFF PAL file to this path." optional:""`
	Diff        string `help:"Also write an original-vs-reduced difference PNG to this path." optional:""`
}

func (r *ReduceCmd) Validate(kctx *kong.Context) error {
	switch {
	case r.K <= 0:
		return fmt.Errorf("invalid cluster count: %d", r.K)
	case r.KLuminance <= 0 || r.KColor <= 0:
		return fmt.Errorf("invalid luminance/color cluster counts: %d, %d", r.KLuminance, r.KColor)
	case r.MaxClusters <= 0:
		return fmt.Errorf("invalid cluster search bound: %d", r.MaxClusters)
	}
	return nil
}

func (r *ReduceCmd) Run() error {
	reducer, err := colorquant.NewReducer(colorquant.Config{
		Strategy:    r.Strategy,
		K:           r.K,
		KLuminance:  r.KLuminance,
		KColor:      r.KColor,
		MaxClusters: r.MaxClusters,
	})
	if err != nil {
		return err
	}

	// Decode once and keep the original matrix around for the diff output.
	original, format, err := colorquant.DecodeImage(r.Input)
	if err != nil {
		return err
	}
	slog.Debug("decoded", "file", r.Input, "format", format)

	h := colorquant.NewHandler(reducer, slog.Default())
	if err := h.HandleImage(original.Image()); err != nil {
		return err
	}

	if err := utils.SaveImage(h.Matrix().Image(), r.Out); err != nil {
		return fmt.Errorf("could not save reduced image %q: %w", r.Out, err)
	}
	slog.Info("reduced image written", "file", r.Out, "strategy", r.Strategy, "palette", len(h.Colors()))

	if r.Swatch != "" {
		palette := h.Colors()
		utils.SortByBrightness(palette)
		if err := utils.SaveSwatch(palette, 64, r.Swatch); err != nil {
			return fmt.Errorf("could not save swatch %q: %w", r.Swatch, err)
		}
	}
	if r.Pal != "" {
		if err := utils.WritePALFile(h.Colors(), r.Pal); err != nil {
			return err
		}
	}
	if r.Diff != "" {
		diff, err := utils.DiffImage(original, h.Matrix())
		if err != nil {
			return fmt.Errorf("could not compute difference image: %w", err)
		}
		if err := utils.SaveImage(diff, r.Diff); err != nil {
			return fmt.Errorf("could not save difference image %q: %w", r.Diff, err)
		}
	}
	return nil
}

type PreviewCmd struct {
	Input  string `arg:"" help:"Input image." type:"existingfile"`
	Colors int    `help:"Preview palette size." default:"8"`
	Method string `help:"Extraction method." enum:"dominant,kmeans" default:"dominant"`
	Out    string `help:"Swatch output path." default:"palette.png"`
}

func (p *PreviewCmd) Run() error {
	m, format, err := colorquant.DecodeImage(p.Input)
	if err != nil {
		return err
	}
	slog.Debug("decoded", "file", p.Input, "format", format)

	method := utils.PreviewDominant
	if p.Method == "kmeans" {
		method = utils.PreviewKMeans
	}
	palette := utils.PreviewPalette(m.Image(), p.Colors, method)
	if len(palette) == 0 {
		return fmt.Errorf("could not extract a preview palette from %q", p.Input)
	}
	utils.SortByBrightness(palette)

	if err := utils.SaveSwatch(palette, 64, p.Out); err != nil {
		return fmt.Errorf("could not save swatch %q: %w", p.Out, err)
	}
	slog.Info("preview palette written", "file", p.Out, "method", method.String(), "colors", len(palette))
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("colorquant"),
		kong.Description("Reduce an image's color palette with alpha-aware k-means clustering."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "colorquant.json", "~/.config/colorquant/config.json"),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx.FatalIfErrorf(ctx.Run())
}
