package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"catma/internal/container"
)

type analyzeOptions struct {
	Seed     uint64   `long:"seed" value-name:"N" description:"walk seed (overrides walks.seed)"`
	Workers  int      `long:"workers" value-name:"N" description:"concurrent interpretations (overrides workers)"`
	LogLevel string   `long:"log-level" value-name:"LVL" description:"debug, info, warn or error" default:"info"`
	Out      string   `long:"out" value-name:"DIR" description:"write results to DIR/<project>/"`
	Links    []string `long:"link" value-name:"SRC-DST" description:"interpret only this non-conformance (repeatable)"`
}

type addOptions struct {
	StaticModel   string   `long:"static-model" value-name:"PATH" description:"static evidence JSON"`
	DynamicModels string   `long:"dynamic-models" value-name:"DIR" description:"directory of learned DOT models"`
	GeneralModel  string   `long:"general-model" value-name:"NAME" description:"general model name"`
	Services      []string `long:"service" value-name:"NAME" description:"known component (repeatable)"`
	Exclude       []string `long:"exclude" value-name:"PATTERN" description:"excluded component glob (repeatable)"`
}

func parseAnalyzeOptions(args []string) (*analyzeOptions, []string, error) {
	opts := &analyzeOptions{}
	rest, err := parseOptions("analyze", "<container> [project...]", opts, args)
	if err != nil || rest == nil {
		return nil, nil, err
	}
	return opts, rest, nil
}

func parseAddOptions(args []string) (*addOptions, []string, error) {
	opts := &addOptions{}
	rest, err := parseOptions("add", "<container> <project>", opts, args)
	if err != nil || rest == nil {
		return nil, nil, err
	}
	return opts, rest, nil
}

// parseOptions parses args into opts. After --help it prints the help text
// and returns nil args and a nil error.
func parseOptions(name, usage string, opts any, args []string) ([]string, error) {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "catma " + name
	parser.Usage = usage + " [OPTIONS]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if rest == nil {
		rest = []string{}
	}
	return rest, nil
}

func (o *addOptions) config() container.ProjectConfig {
	return container.ProjectConfig{
		StaticModel:   o.StaticModel,
		DynamicModels: o.DynamicModels,
		GeneralModel:  o.GeneralModel,
		Services:      o.Services,
		Exclude:       o.Exclude,
	}
}

// ---------------------------------------------------------------------------
// Prompted settings
// ---------------------------------------------------------------------------

// question is one prompted project setting.
type question struct {
	Key    string
	Prompt string
}

var projectQuestions = []question{
	{Key: "static_model", Prompt: "Static evidence JSON"},
	{Key: "dynamic_models", Prompt: "Directory of learned models"},
	{Key: "general_model", Prompt: "General model name"},
	{Key: "services", Prompt: "Known components (comma separated, empty for all)"},
}

// missingQuestions returns the questions for the required settings cfg
// lacks. Services are asked for only together with another setting.
func missingQuestions(cfg container.ProjectConfig) []question {
	var out []question
	for _, q := range projectQuestions {
		switch q.Key {
		case "static_model":
			if cfg.StaticModel != "" {
				continue
			}
		case "dynamic_models":
			if cfg.DynamicModels != "" {
				continue
			}
		case "general_model":
			if cfg.GeneralModel != "" {
				continue
			}
		case "services":
			if len(out) == 0 || len(cfg.Services) > 0 {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

// applyAnswers stores prompt answers keyed by question.Key in cfg.
func applyAnswers(cfg *container.ProjectConfig, answers map[string]string) {
	for k, v := range answers {
		v = strings.TrimSpace(v)
		switch k {
		case "static_model":
			cfg.StaticModel = v
		case "dynamic_models":
			cfg.DynamicModels = v
		case "general_model":
			cfg.GeneralModel = v
		case "services":
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					cfg.Services = append(cfg.Services, s)
				}
			}
		}
	}
}
