package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/climbr/internal/analysis"
	"github.com/Veraticus/climbr/internal/cli"
	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/config"
	"github.com/Veraticus/climbr/internal/export"
	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/session"
	"github.com/Veraticus/climbr/internal/storage"
	"github.com/Veraticus/climbr/internal/tui"
	"github.com/Veraticus/climbr/internal/tui/themes"
)

type analyzeOptions struct {
	mediaType   string
	format      string
	grades      []string
	fonts       []string
	notes       []string
	demo        bool
	remote      bool
	interactive bool
	save        bool
	export      bool
	copy        bool
}

func analyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <photo|->",
		Short: "Identify the routes on a wall photo",
		Long: `Send a wall photo to the vision model and list the routes it finds.

Each route is identified by hold colour. Grades start empty; set them with
--grade/--font/--notes or edit them interactively with -i. Route indexes
start at 0, as shown in the table.

Without an API key the fixed demo wall is returned.

Examples:
  # Analyse a photo and print the routes
  climbr analyze wall.jpg

  # Grade two routes and write the export file
  climbr analyze wall.jpg --grade 0=V4 --grade 2=V7 --notes 2="tricky top" --export

  # Pipe a photo in and get JSON back
  cat wall.jpg | climbr analyze - --format json

  # Try the editor without an API key
  climbr analyze wall.jpg --demo -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.demo, "demo", false, "Return the demo wall without calling the vision model")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Require the vision model (fail without an API key)")
	cmd.MarkFlagsMutuallyExclusive("demo", "remote")

	cmd.Flags().String("provider", "", "Vision provider (anthropic, openai, gemini)")
	cmd.Flags().String("model", "", "Vision model (default depends on provider)")
	_ = viper.BindPFlag(config.KeyProvider, cmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag(config.KeyModel, cmd.Flags().Lookup("model"))

	cmd.Flags().StringVar(&opts.mediaType, "media-type", "", "Image media type (detected when omitted)")
	cmd.Flags().StringArrayVar(&opts.grades, "grade", nil, "Set a V grade, IDX=V4 (repeatable)")
	cmd.Flags().StringArrayVar(&opts.fonts, "font", nil, "Override a Font grade, IDX=6B (repeatable)")
	cmd.Flags().StringArrayVar(&opts.notes, "notes", nil, "Set setter notes, IDX=text (repeatable)")

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Grade routes in the interactive editor")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the wall set to the database")
	cmd.Flags().BoolVar(&opts.export, "export", false, "Write the wall set export file")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the routes as JSON to the clipboard")
	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format (table, json, yaml)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *analyzeOptions) error {
	ctx := cmd.Context()

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	patches, err := parsePatches(opts)
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	img, source, err := readPhoto(cmd.InOrStdin(), path, opts.mediaType)
	if err != nil {
		return common.NewUserError("cannot use "+path+": "+err.Error(), err)
	}

	store, err := openStorage(ctx, settings)
	if err != nil {
		if opts.save {
			return err
		}
		slog.Warn("Database unavailable, continuing without it", "error", err)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	var kv config.KV
	if store != nil {
		kv = store
	}
	analyzer, err := buildAnalyzer(settings, resolveAPIKey(ctx, settings, kv))
	if err != nil {
		return err
	}

	mode := analysis.ModeAuto
	switch {
	case opts.demo:
		mode = analysis.ModeDemo
	case opts.remote:
		mode = analysis.ModeRemote
	}

	ctrl := session.New(analyzer, session.WithMode(mode), session.WithTimeout(settings.Timeout))
	defer ctrl.Reset()

	slog.Debug("Analysing photo", "source", source, "media_type", img.MediaType, "bytes", len(img.Data))
	if err := ctrl.Submit(ctx, img); err != nil {
		return err
	}

	state, err := waitForAnalysis(ctx, ctrl, cmd.ErrOrStderr(), "Reading the wall ("+analyzer.Provider(mode)+")")
	if err != nil {
		return err
	}

	if state == session.StateDone {
		if err := applyPatches(ctrl, patches); err != nil {
			return err
		}
	}

	writer := export.NewWriter(settings.ExportDir)
	writer.Prefix = settings.ExportPrefix

	if opts.interactive {
		theme, ok := themes.ByName(settings.Theme)
		if !ok {
			return fmt.Errorf("unknown theme %q (available: %s)", settings.Theme, strings.Join(themes.Names(), ", "))
		}
		if err := tui.Run(ctx, tui.Config{
			Controller: ctrl,
			Saver:      writer,
			Clipboard:  export.SystemClipboard{},
			Theme:      theme,
			Source:     source,
		}); err != nil {
			return err
		}
		state = ctrl.State()
		if state != session.StateDone {
			if err := ctrl.Err(); err != nil {
				return analysisFailure(err)
			}
			return nil
		}
	} else if state != session.StateDone {
		return analysisFailure(ctrl.Err())
	}

	return finishAnalysis(ctx, cmd, ctrl, finishOptions{
		format: format,
		writer: writer,
		store:  store,
		source: source,
		opts:   opts,
	})
}

type finishOptions struct {
	writer *export.Writer
	store  *storage.SQLiteStorage
	opts   *analyzeOptions
	format export.Format
	source string
}

func finishAnalysis(ctx context.Context, cmd *cobra.Command, ctrl *session.Controller, f finishOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	doc := ctrl.ExportDocument()

	if f.format == export.FormatTable {
		fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d routes (%s)", len(doc.WallSet), ctrl.Provider())))
		fmt.Fprintln(out, cli.RenderRoutes(doc.WallSet))
	} else if err := export.Encode(out, f.format, doc); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if f.opts.export {
		path, err := f.writer.Write(doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(errOut, cli.FormatSuccess("Exported to "+path))
	}

	if f.opts.copy {
		if err := export.Copy(export.SystemClipboard{}, ctrl); err != nil {
			return common.NewUserError("could not copy to the clipboard", err)
		}
		fmt.Fprintln(errOut, cli.FormatSuccess("Copied routes to the clipboard"))
	}

	if f.opts.save {
		id, err := f.store.SaveWallSet(ctx, doc, ctrl.Provider(), f.source)
		if err != nil {
			return fmt.Errorf("failed to save wall set: %w", err)
		}
		fmt.Fprintln(errOut, cli.FormatSuccess("Saved wall set "+id))
	}

	return nil
}

// readPhoto loads the image at path, or stdin when path is "-".
func readPhoto(stdin io.Reader, path, mediaType string) (model.Image, string, error) {
	if path == "-" {
		img, err := model.ReadImage(stdin, mediaType)
		return img, "stdin", err
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return model.Image{}, "", err
	}
	defer func() { _ = f.Close() }()

	img, err := model.ReadImage(f, mediaType)
	return img, filepath.Base(path), err
}

type indexedPatch struct {
	patch model.Patch
	index int
}

// parsePatches turns --grade, --font and --notes values into patches, applied
// in that order.
func parsePatches(opts *analyzeOptions) ([]indexedPatch, error) {
	var patches []indexedPatch
	add := func(flag string, values []string, build func(string) model.Patch) error {
		for _, raw := range values {
			idx, value, err := splitAssignment(raw)
			if err != nil {
				return fmt.Errorf("--%s %q: %w", flag, raw, err)
			}
			patches = append(patches, indexedPatch{index: idx, patch: build(value)})
		}
		return nil
	}

	upper := func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
	if err := add("grade", opts.grades, func(v string) model.Patch { return model.SetGradeV(upper(v)) }); err != nil {
		return nil, err
	}
	if err := add("font", opts.fonts, func(v string) model.Patch { return model.SetGradeFont(upper(v)) }); err != nil {
		return nil, err
	}
	if err := add("notes", opts.notes, model.SetNotes); err != nil {
		return nil, err
	}
	return patches, nil
}

func splitAssignment(raw string) (int, string, error) {
	idxText, value, ok := strings.Cut(raw, "=")
	if !ok {
		return 0, "", fmt.Errorf("want IDX=VALUE")
	}
	idx, err := strconv.Atoi(strings.TrimSpace(idxText))
	if err != nil || idx < 0 {
		return 0, "", fmt.Errorf("route index must be a non-negative number")
	}
	return idx, value, nil
}

func applyPatches(ctrl *session.Controller, patches []indexedPatch) error {
	for _, p := range patches {
		if _, err := ctrl.Patch(p.index, p.patch); err != nil {
			return common.NewUserError(fmt.Sprintf("route %d: %v", p.index, err), err)
		}
	}
	return nil
}

// waitForAnalysis blocks until the session settles, animating a spinner on w.
func waitForAnalysis(ctx context.Context, ctrl *session.Controller, w io.Writer, description string) (session.State, error) {
	spinner := cli.NewSpinner(w, description)
	defer spinner.Stop()

	type result struct {
		err   error
		state session.State
	}
	done := make(chan result, 1)
	go func() {
		state, err := ctrl.Wait(ctx)
		done <- result{state: state, err: err}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case r := <-done:
			return r.state, r.err
		case <-ticker.C:
			spinner.Tick()
		}
	}
}
