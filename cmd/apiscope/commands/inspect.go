package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/loykin/apiscope/cmd/apiscope/config"
	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/util"
	"github.com/loykin/apiscope/internal/validator"
	"github.com/loykin/apiscope/pkg/scenario"
)

// InspectOptions drive one inspect run.
type InspectOptions struct {
	// Bootstrap is the bootstrap file. Empty uses the default lookup.
	Bootstrap   string
	BaseDir     string
	ClientClass string
	// Vars are bound before any --set expression is evaluated.
	Vars map[string]any
	// Sets are key=expr configure statements applied in order.
	Sets []string
}

type contextReport struct {
	ID        string                 `yaml:"id"`
	Ownership string                 `yaml:"ownership"`
	CallDepth int                    `yaml:"callDepth"`
	Scenario  *scenario.ScenarioInfo `yaml:"scenario,omitempty"`
}

type inspectReport struct {
	Context    contextReport  `yaml:"context"`
	Config     map[string]any `yaml:"config"`
	Vars       map[string]any `yaml:"vars"`
	Validators []string       `yaml:"validators"`
}

var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build a root execution context and print its effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		var doc config.ConfigDoc
		if settings := strings.TrimSpace(v.GetString("settings")); settings != "" {
			if err := doc.Load(settings); err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
		}
		if err := doc.SetupLogging(cmd.ErrOrStderr()); err != nil {
			return err
		}
		sets, err := cmd.Flags().GetStringArray("set")
		if err != nil {
			return err
		}
		opts := InspectOptions{
			Bootstrap:   firstNonEmpty(v.GetString("config"), doc.Bootstrap),
			BaseDir:     firstNonEmpty(v.GetString("base_dir"), doc.BaseDir),
			ClientClass: firstNonEmpty(v.GetString("class"), doc.ClientClass),
			Vars:        doc.Vars,
			Sets:        sets,
		}
		return Inspect(cmd.OutOrStdout(), opts)
	},
}

// Inspect builds a root context with bootstrap evaluation on, applies the
// requested configure statements and writes the masked result as YAML.
func Inspect(w io.Writer, opts InspectOptions) error {
	rt := scenario.NewRuntime(
		scenario.WithConfigPath(opts.Bootstrap),
		scenario.WithBaseDir(opts.BaseDir),
	)
	ctx, err := scenario.NewContext(rt, scenario.NewCallLink(
		scenario.WithBootstrap(),
		scenario.WithClientClass(opts.ClientClass),
		scenario.WithScenario(scenario.NewScenarioInfo("inspect")),
	))
	if err != nil {
		return err
	}
	defer ctx.Close()

	ctx.Vars().PutAll(opts.Vars)
	for _, stmt := range opts.Sets {
		key, expr, ok := strings.Cut(stmt, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid --set %q: expected key=expr", stmt)
		}
		if err := ctx.ConfigureExpr(key, expr); err != nil {
			return err
		}
	}

	vars, err := maskedVars(ctx)
	if err != nil {
		return err
	}
	report := inspectReport{
		Context: contextReport{
			ID:        ctx.ID(),
			Ownership: ctx.Ownership().String(),
			CallDepth: ctx.CallDepth(),
			Scenario:  ctx.Scenario(),
		},
		Config:     ctx.Config().Masked(),
		Vars:       vars,
		Validators: validator.Names(ctx.Validators()),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func maskedVars(ctx *scenario.Context) (map[string]any, error) {
	plain := make(map[string]any, ctx.Vars().Len())
	for _, name := range ctx.Vars().Keys() {
		v, _ := ctx.Vars().Get(name)
		plain[name] = v.Plain()
	}
	out, err := util.WalkStrings(plain, func(s string) (any, error) {
		return common.MaskSensitiveData(s), nil
	})
	if err != nil {
		return nil, err
	}
	return common.GetGlobalMasker().MaskMap(out.(map[string]any)), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
