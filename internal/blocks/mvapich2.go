package blocks

import (
	"fmt"

	"github.com/opmodel/hpcbase/internal/recipe"
)

const (
	// DefaultMVAPICH2Version is built when no version is requested.
	DefaultMVAPICH2Version = "2.3.1"

	defaultMVAPICH2Prefix = "/usr/local/mvapich2"
	cudaHome              = "/usr/local/cuda"
)

// MVAPICH2Options configures the MVAPICH2 directive.
type MVAPICH2Options struct {
	Version   string           `json:"version,omitempty"`
	CUDA      bool             `json:"cuda,omitempty"`
	Toolchain recipe.Toolchain `json:"toolchain,omitempty"`
	Prefix    string           `json:"prefix,omitempty"`
}

// MVAPICH2 builds the MVAPICH2 MPI library from source.
type MVAPICH2 struct {
	opts MVAPICH2Options
}

// NewMVAPICH2 returns an MVAPICH2 directive. A zero toolchain selects the
// GNU driver binaries.
func NewMVAPICH2(opts MVAPICH2Options) (*MVAPICH2, error) {
	if opts.Version == "" {
		opts.Version = DefaultMVAPICH2Version
	}
	if err := checkVersion(recipe.KindMVAPICH2, opts.Version, dottedVersion, DefaultMVAPICH2Version); err != nil {
		return nil, err
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultMVAPICH2Prefix
	}
	if err := checkPrefix(recipe.KindMVAPICH2, opts.Prefix); err != nil {
		return nil, err
	}
	if opts.Toolchain.IsZero() {
		opts.Toolchain = defaultToolchain
	}
	return &MVAPICH2{opts: opts}, nil
}

// Kind implements recipe.Directive.
func (m *MVAPICH2) Kind() recipe.Kind { return recipe.KindMVAPICH2 }

// Prefix returns the install prefix.
func (m *MVAPICH2) Prefix() string { return m.opts.Prefix }

// Describe implements recipe.Directive.
func (m *MVAPICH2) Describe() map[string]any {
	return map[string]any{
		"version":   m.opts.Version,
		"cuda":      m.opts.CUDA,
		"prefix":    m.opts.Prefix,
		"toolchain": m.opts.Toolchain.Describe(),
	}
}

func (m *MVAPICH2) dependencies(distro recipe.Distro) []string {
	if distro.IsRHEL() {
		return []string{"byacc", "file", "make", "openssh-clients", "perl", "tar", "wget"}
	}
	return []string{"byacc", "file", "make", "openssh-client", "perl", "tar", "wget"}
}

func (m *MVAPICH2) environment() []recipe.EnvVar {
	env := []recipe.EnvVar{
		{Name: "LD_LIBRARY_PATH", Value: m.opts.Prefix + "/lib:$LD_LIBRARY_PATH"},
		{Name: "PATH", Value: m.opts.Prefix + "/bin:$PATH"},
	}
	if m.opts.CUDA {
		env = append(env, recipe.EnvVar{
			Name:  "PROFILE_POSTLIB",
			Value: fmt.Sprintf("-L%s/lib64/stubs -lnvidia-ml", cudaHome),
		})
	}
	return env
}

// Instructions implements recipe.Directive.
func (m *MVAPICH2) Instructions(ctx recipe.Context) []recipe.Instruction {
	build := sourceBuild{
		URL:       fmt.Sprintf("http://mvapich.cse.ohio-state.edu/download/mvapich/mv2/mvapich2-%s.tar.gz", m.opts.Version),
		Directory: "mvapich2-" + m.opts.Version,
		Prefix:    m.opts.Prefix,
		Toolchain: m.opts.Toolchain,
	}
	if m.opts.CUDA {
		stubs := cudaHome + "/lib64/stubs"
		build.PreConfigure = []string{fmt.Sprintf("ln -s %[1]s/libcuda.so %[1]s/libcuda.so.1", stubs)}
		build.Environment = []string{fmt.Sprintf("LD_LIBRARY_PATH=%s:$LD_LIBRARY_PATH", stubs)}
		build.ConfigureOpts = []string{"--disable-mcast", "--enable-cuda", "--with-cuda=" + cudaHome}
		build.PostInstall = []string{fmt.Sprintf("rm -f %s/libcuda.so.1", stubs)}
	} else {
		build.ConfigureOpts = []string{"--disable-cuda", "--disable-mcast"}
	}

	cmds := installPackages(ctx.Distro, m.dependencies(ctx.Distro)...)
	cmds = append(cmds, build.commands()...)

	return []recipe.Instruction{
		recipe.Comment("MVAPICH2 version " + m.opts.Version),
		recipe.Run(cmds...),
		recipe.Env(m.environment()...),
	}
}

// RuntimeInstructions implements recipe.RuntimeProvider.
func (m *MVAPICH2) RuntimeInstructions(ctx recipe.Context, from string) []recipe.Instruction {
	client := "openssh-client"
	if ctx.Distro.IsRHEL() {
		client = "openssh-clients"
	}
	return []recipe.Instruction{
		recipe.Comment("MVAPICH2"),
		recipe.Run(installPackages(ctx.Distro, client)...),
		recipe.CopyFrom(from, m.opts.Prefix, m.opts.Prefix),
		recipe.Env(m.environment()...),
	}
}
