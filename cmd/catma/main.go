package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"catma/internal/container"
	"catma/internal/logger"
	"catma/internal/pipeline"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "init",
		short: "Create a new catma container",
		usage: "catma init <name>",
		long: `Create a new catma container at ~/.catma/<name>/.

Errors if the container already exists.
`,
		run: runInit,
	},
	{
		name:  "add",
		short: "Add a project to a container",
		usage: "catma add <container> <project> [options]",
		long: `Add a new project to an existing container.

Model locations may be given as options; any required one that is missing
is prompted for. Writes ~/.catma/<container>/<project>.yaml.

Options:
  --static-model PATH     static evidence JSON
  --dynamic-models DIR    directory of learned DOT models
  --general-model NAME    general model name inside --dynamic-models
  --service NAME          known component (repeatable)
  --exclude PATTERN       component glob left out of the analysis (repeatable)

Errors if the project already exists.
`,
		run: runAdd,
	},
	{
		name:  "analyze",
		short: "Detect and interpret non-conformances",
		usage: "catma analyze <container> [project...] [options]",
		long: `Run the conformance analysis for every project in the container, or
for the named projects only.

For each project, compares the static model with the general runtime
model, samples call sequences for every non-conformance and writes
interpretations, code-linked models and a markdown report to
~/.catma/<container>/<project>/.

Options:
  --seed N          walk seed (overrides walks.seed)
  --workers N       concurrent interpretations (overrides workers)
  --log-level LVL   debug, info, warn or error (default info)
  --out DIR         write results to DIR/<project>/ instead
  --link SRC-DST    interpret only this non-conformance (repeatable)
`,
		run: runAnalyze,
	},
	{
		name:  "list",
		short: "List containers, or the projects of one",
		usage: "catma list [container]",
		long: `Without arguments, list every container under ~/.catma/.
With a container name, list its projects.
`,
		run: runList,
	},
	{
		name:  "remove",
		short: "Remove a container or one of its projects",
		usage: "catma remove <container> [project]",
		long: `Remove a whole container, or only a project's config and output.
`,
		run: runRemove,
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "catma - conformance analysis of microservice architectures\n\n")
	fmt.Fprintf(w, "Usage:\n  catma <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'catma help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "catma: unknown command %q\n\nRun 'catma help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(os.Stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'catma help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func runInit(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: catma init <name>")
	}
	name := args[0]
	if err := container.Init(name); err != nil {
		return err
	}
	c, err := container.Open(name)
	if err != nil {
		return err
	}
	fmt.Printf("created container %q at %s\n", name, c.Dir)
	return nil
}

// ---------------------------------------------------------------------------
// add
// ---------------------------------------------------------------------------

func runAdd(args []string) error {
	opts, rest, err := parseAddOptions(args)
	if err != nil {
		return err
	}
	if opts == nil {
		return nil
	}
	if len(rest) < 2 {
		return fmt.Errorf("usage: catma add <container> <project> [options]")
	}
	containerName, projectName := rest[0], rest[1]

	c, err := container.Open(containerName)
	if err != nil {
		return err
	}

	cfg := opts.config()
	if questions := missingQuestions(cfg); len(questions) > 0 {
		answers, err := promptQuestions(questions)
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}
		applyAnswers(&cfg, answers)
	}

	if err := c.AddProject(projectName, cfg); err != nil {
		return err
	}
	fmt.Printf("added project %q to container %q\n", projectName, containerName)
	return nil
}

// ---------------------------------------------------------------------------
// analyze
// ---------------------------------------------------------------------------

func runAnalyze(args []string) error {
	opts, rest, err := parseAnalyzeOptions(args)
	if err != nil {
		return err
	}
	if opts == nil {
		return nil
	}
	if len(rest) < 1 {
		return fmt.Errorf("usage: catma analyze <container> [project...] [options]")
	}
	if !logger.Level.SetByName(opts.LogLevel) {
		return fmt.Errorf("unknown log level %q", opts.LogLevel)
	}
	containerName := rest[0]

	c, err := container.Open(containerName)
	if err != nil {
		return err
	}

	projects := rest[1:]
	if len(projects) == 0 {
		if projects, err = c.ListProjects(); err != nil {
			return err
		}
	}
	if len(projects) == 0 {
		fmt.Printf("no projects in container %q\n", containerName)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var anyErr bool
	for _, proj := range projects {
		cfg, err := c.LoadProject(proj)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading project %q: %v\n", proj, err)
			anyErr = true
			continue
		}
		outputDir := c.OutputDir(proj)
		if opts.Out != "" {
			outputDir = filepath.Join(opts.Out, proj)
		}
		fmt.Printf("analyzing %s/%s...\n", containerName, proj)
		if err := analyzeProject(ctx, proj, cfg, opts, outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			anyErr = true
			if errors.Is(err, context.Canceled) {
				break
			}
			continue
		}
		fmt.Printf("  done → %s\n", outputDir)
	}
	if anyErr {
		return fmt.Errorf("one or more errors during analysis")
	}
	return nil
}

func analyzeProject(ctx context.Context, name string, cfg *container.ProjectConfig, opts *analyzeOptions, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	res, err := pipeline.Run(ctx, cfg, pipeline.Options{
		Project: name,
		Seed:    opts.Seed,
		Workers: opts.Workers,
		Links:   opts.Links,
		OutDir:  outputDir,
		Log:     logger.New("analyze").With("project", name),
	})
	if err != nil {
		return err
	}
	if err := pipeline.Write(res, outputDir); err != nil {
		return err
	}
	fmt.Printf("  run %s (seed %d): %d static, %d dynamic non-conformances\n",
		res.RunID, res.Seed, res.Conformance.Static.Len(), res.Conformance.Dynamic.Len())
	return nil
}

// ---------------------------------------------------------------------------
// list / remove
// ---------------------------------------------------------------------------

func runList(args []string) error {
	if len(args) == 0 {
		names, err := container.List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}
	c, err := container.Open(args[0])
	if err != nil {
		return err
	}
	projects, err := c.ListProjects()
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Println(p)
	}
	return nil
}

func runRemove(args []string) error {
	switch len(args) {
	case 1:
		if err := container.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("removed container %q\n", args[0])
	case 2:
		c, err := container.Open(args[0])
		if err != nil {
			return err
		}
		if err := c.RemoveProject(args[1]); err != nil {
			return err
		}
		fmt.Printf("removed project %q from container %q\n", args[1], args[0])
	default:
		return fmt.Errorf("usage: catma remove <container> [project]")
	}
	return nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
