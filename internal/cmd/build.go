package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/output"
	"github.com/opmodel/hpcbase/internal/recipe"
	"github.com/opmodel/hpcbase/internal/render"
)

// buildOptions holds the flags of the build command.
type buildOptions struct {
	values ValuesFlags
	render RenderFlags
	out    string
	check  bool
}

// NewBuildCmd creates the build command.
func NewBuildCmd(gc *GlobalConfig) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build [recipe|file]",
		Short: "Render a recipe to a Dockerfile or Singularity definition",
		Long: `Render a recipe to a container build file.

The recipe is a built-in recipe name or a recipe document
(.cue, .yaml, .json). Values files override the parameters of
built-in recipes; later files win.

The build file is written to stdout unless --out is given. --out
replaces the target atomically: readers see either the previous file
or the complete new one. When --out names a directory the file is
written there as Dockerfile or Singularity.def.

Examples:
  # Render the default recipe
  hpcbase build

  # Render a Singularity definition with CUDA disabled
  hpcbase build --format singularity -f nocuda.yaml --out Singularity.def

  # Render and check the Dockerfile with BuildKit's parser
  hpcbase build --check --out build/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(gc, gc.recipeArg(args), &opts)
		},
	}

	opts.values.AddTo(cmd)
	opts.render.AddTo(cmd)
	cmd.Flags().StringVarP(&opts.out, "out", "O", "",
		"Write the build file to this path instead of stdout")
	cmd.Flags().BoolVar(&opts.check, "check", false,
		"Validate Dockerfile output with BuildKit's parser")

	return cmd
}

func runBuild(gc *GlobalConfig, arg string, opts *buildOptions) error {
	format, err := render.ParseFormat(gc.Resolved.Format)
	if err != nil {
		return err
	}
	if opts.check && format != render.FormatDocker {
		return oerrors.NewValidationError(
			"--check validates Dockerfiles only", "", "check",
			"Drop --check or use --format docker")
	}

	r, err := gc.loadRecipe(arg, opts.values.Values)
	if err != nil {
		return err
	}
	recipeLog := output.RecipeLogger(r.Name)
	logDirectives(recipeLog.Debug, r)

	data, err := render.Render(r, render.Options{
		Format:             format,
		SingularityVersion: gc.Resolved.SingularityVersion,
	})
	if err != nil {
		return err
	}

	if opts.check {
		stages, err := render.ValidateDockerfile(data)
		if err != nil {
			return err
		}
		recipeLog.Info("Dockerfile parsed", "stages", len(stages))
	}

	if opts.out == "" {
		_, err := output.Stdout().Write(data)
		return err
	}

	path, err := outputPath(gc.Fs, opts.out, format)
	if err != nil {
		return err
	}
	if err := writeAtomic(gc.Fs, path, data); err != nil {
		return err
	}
	recipeLog.Info(output.FormatCheckmark("wrote "+path),
		"format", format,
		"size", humanize.Bytes(uint64(len(data))),
		"digest", digest.FromBytes(data).Encoded()[:12],
	)
	return nil
}

// logDirectives logs one line per directive of every stage.
func logDirectives(logf func(msg any, keyvals ...any), r *recipe.Recipe) {
	m := recipe.BuildManifest(r)
	logf("recipe manifest", "digest", m.Digest())
	for _, st := range m.Stages {
		logf(fmt.Sprintf("stage %d", st.Index), "image", st.Image, "name", st.Name)
		for i, d := range st.Directives {
			logf(output.FormatDirectiveLine(i, d.Kind.String(), output.SummarizeParams(d.Params)))
		}
	}
}

// outputPath resolves --out: a directory, or a path ending in a separator,
// receives the format's default file name. Missing directories are created
// by writeAtomic.
func outputPath(fs afero.Fs, out string, format render.Format) (string, error) {
	if strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator)) {
		return filepath.Join(out, format.DefaultFilename()), nil
	}

	isDir, err := afero.IsDir(fs, out)
	if err != nil {
		// A missing path is a file to create.
		return out, nil
	}
	if isDir {
		return filepath.Join(out, format.DefaultFilename()), nil
	}
	return out, nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// over path, so path never holds a partial build file.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return oerrors.NewPermissionError("creating output directory",
			map[string]string{"path": dir, "cause": err.Error()},
			"Check that the parent directory is writable")
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return oerrors.NewPermissionError("creating temporary file",
			map[string]string{"path": dir, "cause": err.Error()},
			"The build file is staged next to its target; check that "+dir+" is writable")
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		_ = fs.Remove(tmpName)
		if writeErr == nil {
			writeErr = closeErr
		}
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}

	if err := fs.Chmod(tmpName, 0o644); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return oerrors.NewPermissionError("replacing output file",
			map[string]string{"path": path, "cause": err.Error()},
			"Check that "+path+" is a writable file, not a directory")
	}
	return nil
}
