package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/slopblend/internal/clips"
	"github.com/kikiluvv/slopblend/internal/config"
	"github.com/kikiluvv/slopblend/internal/ffmpeg"
	"github.com/kikiluvv/slopblend/internal/logging"
	"github.com/kikiluvv/slopblend/internal/pipeline"
	"github.com/kikiluvv/slopblend/internal/server"
	"github.com/kikiluvv/slopblend/internal/transition"
	"github.com/kikiluvv/slopblend/pkg/util"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "slopblend",
	Short:        "slopblend - stitch clips with crossfade transitions",
	Long:         "Compiles an ordered list of clips into a single ffmpeg xfade/acrossfade graph and encodes it.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose, logFormat)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

var (
	outputPath     string
	compileOutput  string
	transitionName string
	duration       float64
	jsonOutput     bool
	forceInit      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./slopblend.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "log format (console|json)")

	for _, c := range []*cobra.Command{blendCmd, compileCmd} {
		c.Flags().StringVarP(&transitionName, "transition", "t", "", "transition kind (default from config)")
		c.Flags().Float64VarP(&duration, "duration", "d", 0, "transition duration in seconds (default from config)")
	}
	blendCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file")
	_ = blendCmd.MarkFlagRequired("output")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "out.mp4", "output file shown in the printed command")
	compileCmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(blendCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(transitionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
}

// flagPolicy builds a uniform policy from -t/-d over the configured default
func flagPolicy(cfg *config.Config) (transition.Policy, error) {
	spec := cfg.DefaultPolicy().At(0)
	if transitionName != "" {
		kind, err := transition.ParseKind(transitionName)
		if err != nil {
			return transition.Policy{}, err
		}
		spec.Kind = kind
	}
	if duration != 0 {
		if duration < 0 {
			return transition.Policy{}, fmt.Errorf("duration must be positive")
		}
		spec.Duration = duration
	}
	return transition.Uniform(spec.Kind, spec.Duration), nil
}

func newExecutor(cfg *config.Config) (*ffmpeg.Executor, error) {
	exec, err := ffmpeg.New(log.Logger, cfg.ExecutorOptions())
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("ffmpeg", exec.FFmpegPath()).
		Str("ffprobe", exec.FFprobePath()).
		Msg("resolved binaries")
	return exec, nil
}

// progressLogger reports encode progress once per whole percent
func progressLogger() ffmpeg.ProgressFunc {
	last := -1
	return func(p *ffmpeg.Progress) {
		pct := int(p.Percentage)
		if pct == last {
			return
		}
		last = pct
		log.Info().
			Int("percent", pct).
			Str("time", p.Time).
			Str("speed", p.Speed).
			Msg("encoding")
	}
}

func runBlend(cmd *cobra.Command, req pipeline.BlendRequest) error {
	cfg := config.FromContext(cmd.Context())

	pipe, err := pipeline.New(log.Logger, cfg)
	if err != nil {
		return err
	}

	req.ProgressFunc = progressLogger()
	res, err := pipe.Blend(cmd.Context(), req)
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", res.RunID).
		Str("output", res.Output).
		Msg("blend complete")
	return nil
}

var blendCmd = &cobra.Command{
	Use:   "blend [clips...]",
	Short: "Blend clips into one video",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := flagPolicy(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}

		return runBlend(cmd, pipeline.BlendRequest{
			Clips:  args,
			Output: outputPath,
			Policy: policy,
		})
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [plan file]",
	Short: "Render a YAML blend plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		plan, err := clips.LoadPlan(args[0])
		if err != nil {
			return err
		}

		policy, err := plan.Policy(cfg.DefaultPolicy().At(0))
		if err != nil {
			return err
		}

		log.Info().Str("plan", args[0]).Str("policy", policy.String()).Msg("rendering plan")

		return runBlend(cmd, pipeline.BlendRequest{
			Clips:  plan.Paths(),
			Output: plan.Output,
			Policy: policy,
		})
	},
}

var compileCmd = &cobra.Command{
	Use:   "compile [clips...]",
	Short: "Print the filter graph and ffmpeg command without encoding",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		policy, err := flagPolicy(cfg)
		if err != nil {
			return err
		}

		exec, err := newExecutor(cfg)
		if err != nil {
			return err
		}
		pipe := pipeline.NewWithComponents(log.Logger, exec, exec, cfg)

		compiled, err := pipe.Compile(cmd.Context(), args, policy)
		if err != nil {
			return err
		}

		argv := exec.CommandLine(pipe.EncodeOptions(compiled, compileOutput))

		w := cmd.OutOrStdout()
		if jsonOutput {
			resp := server.CompiledToResponse(compiled)
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				server.CompileResponse
				Command []string `json:"command"`
			}{resp, argv})
		}

		for _, j := range compiled.Junctions {
			fmt.Fprintf(w, "junction %d: %s %.3fs at offset %.3fs\n",
				j.Index, j.Transition.Kind, j.Transition.Duration, j.Offset)
		}
		if d, ok := compiled.Duration(); ok {
			fmt.Fprintf(w, "output duration: %.3fs\n", d)
		}
		fmt.Fprintf(w, "\nfilter_complex:\n  %s\n", strings.Join(strings.Split(compiled.Graph.String(), ";"), ";\n  "))
		fmt.Fprintf(w, "\ncommand:\n  %s\n", strings.Join(argv, " "))
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [clips...]",
	Short: "Print clip durations as reported by ffprobe",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		for _, clip := range args {
			d, err := exec.ProbeDuration(cmd.Context(), clip)
			if err != nil {
				return fmt.Errorf("%s: %w", clip, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.3f\n", clip, d)
		}
		return nil
	},
}

var transitionsCmd = &cobra.Command{
	Use:   "transitions",
	Short: "List supported transition kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range transition.Kinds() {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(config.FromContext(cmd.Context()))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "slopblend.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := util.EnsureParentDir(path); err != nil {
			return err
		}
		if err := config.FromContext(cmd.Context()).Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}
