package recipe

// InstructionKind identifies a primitive build step.
type InstructionKind string

// Primitive instruction kinds understood by every renderer.
const (
	InstrFrom    InstructionKind = "from"
	InstrComment InstructionKind = "comment"
	InstrRun     InstructionKind = "run"
	InstrEnv     InstructionKind = "env"
	InstrCopy    InstructionKind = "copy"
)

// EnvVar is a single environment variable assignment.
type EnvVar struct {
	Name  string
	Value string
}

// Instruction is a primitive build step produced by a directive.
// Only the fields relevant to Kind are set.
type Instruction struct {
	Kind InstructionKind

	// Image and As describe a from instruction.
	Image string
	As    string

	// Text is the comment body, possibly spanning several lines.
	Text string

	// Commands are the shell commands of a run instruction, in order.
	Commands []string

	// Env holds the assignments of an env instruction, in order.
	Env []EnvVar

	// From, Sources and Dest describe a copy instruction.
	From    string
	Sources []string
	Dest    string
}

// From returns a from instruction.
func From(image, as string) Instruction {
	return Instruction{Kind: InstrFrom, Image: image, As: as}
}

// Comment returns a comment instruction.
func Comment(text string) Instruction {
	return Instruction{Kind: InstrComment, Text: text}
}

// Run returns a run instruction chaining the commands.
func Run(commands ...string) Instruction {
	cmds := make([]string, len(commands))
	copy(cmds, commands)
	return Instruction{Kind: InstrRun, Commands: cmds}
}

// Env returns an env instruction.
func Env(vars ...EnvVar) Instruction {
	env := make([]EnvVar, len(vars))
	copy(env, vars)
	return Instruction{Kind: InstrEnv, Env: env}
}

// CopyFrom returns a copy instruction importing paths from another stage.
func CopyFrom(from string, dest string, sources ...string) Instruction {
	src := make([]string, len(sources))
	copy(src, sources)
	return Instruction{Kind: InstrCopy, From: from, Sources: src, Dest: dest}
}
