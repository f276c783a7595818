package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zen-systems/gradeflow/pkg/compliance"
	"github.com/zen-systems/gradeflow/pkg/config"
	"github.com/zen-systems/gradeflow/pkg/document"
	"github.com/zen-systems/gradeflow/pkg/oracle"
	"github.com/zen-systems/gradeflow/pkg/report"
	"github.com/zen-systems/gradeflow/pkg/review"
	"github.com/zen-systems/gradeflow/pkg/rubric"
	"github.com/zen-systems/gradeflow/pkg/scoring"
)

var (
	runFile    string
	oracleFlag string
	modelFlag  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gradeflow",
		Short: "LLM-driven grading for grant and contract proposals",
		Long: `Gradeflow scores proposal bundles against a weighted rubric using an
	LLM oracle, and runs multi-agent review panels that consolidate free-text
	critique with structured criterion scores.`,
	}

	rootCmd.PersistentFlags().StringVar(&runFile, "config", "", "path to run profile file")
	rootCmd.PersistentFlags().StringVar(&oracleFlag, "oracle", "", "override oracle (anthropic, openai, google)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override model")

	rootCmd.AddCommand(rubricCmd())
	rootCmd.AddCommand(gradeCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(agentsCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func rubricCmd() *cobra.Command {
	var criteriaFile string
	var outDir string

	cmd := &cobra.Command{
		Use:   "rubric [rubric.csv]",
		Short: "Build a rubric snapshot and prompt templates from CSV",
		Long: `Parses the weighted rubric CSV (plus an optional criteria description
	CSV), splits category weights across sub-categories, and writes the rubric
	snapshot and one prompt template per criterion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := rubric.ReadRubricFile(args[0])
			if err != nil {
				return err
			}

			descriptions := map[string]string{}
			if criteriaFile != "" {
				descriptions, err = rubric.ReadCriteriaFile(criteriaFile)
				if err != nil {
					return err
				}
			}

			r := rubric.Build(rows, descriptions)
			units, err := rubric.Flatten(r)
			if err != nil {
				return fmt.Errorf("rubric does not flatten cleanly: %w", err)
			}

			if err := rubric.SaveSnapshot(r, filepath.Join(outDir, "rubric_snapshot.json")); err != nil {
				return err
			}
			templates := rubric.GenerateTemplates(r)
			if err := rubric.SaveTemplates(templates, filepath.Join(outDir, "templates")); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Wrote snapshot and %d templates to %s (%d scoring units)\n",
				len(templates), outDir, len(units))
			return nil
		},
	}

	cmd.Flags().StringVar(&criteriaFile, "criteria", "", "criteria description CSV")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	return cmd
}

func gradeCmd() *cobra.Command {
	var snapshotFile string
	var templatesDir string
	var outDir string
	var skipCompliance bool

	cmd := &cobra.Command{
		Use:   "grade [bundle-dir]",
		Short: "Score a proposal bundle against the rubric",
		Long: `Verifies the bundle, runs the administrative compliance checks, then
	scores every rubric criterion through the oracle with warm-up pacing and
	batched concurrency. Writes an incremental audit CSV and a markdown report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			bundle, proposal, sections, err := openBundle(args[0], cfg.Run)
			if err != nil {
				return err
			}
			if !skipCompliance {
				if err := runCompliance(bundle, proposal, cfg.Run.Compliance); err != nil {
					return err
				}
			}

			r, units, err := loadRubric(snapshotFile)
			if err != nil {
				return err
			}
			templates, err := loadTemplates(templatesDir, r)
			if err != nil {
				return err
			}

			o, model, err := createOracle(cfg)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			audit, err := report.NewAuditWriter(filepath.Join(outDir, "audit.csv"))
			if err != nil {
				return err
			}
			defer audit.Close()

			prompts := scoring.NewPromptBuilder(templates, sections, proposal.FullText,
				scoring.WithTokenBudget(cfg.Run.TokenBudget))
			scheduler := scoring.NewScheduler(o, model, prompts, cfg.Run.SchedulerSettings(),
				scoring.WithResultHook(func(result scoring.UnitResult) {
					if err := audit.WriteResult(result); err != nil {
						log.Printf("audit write failed: %v", err)
					}
				}))

			started := time.Now()
			fmt.Fprintf(os.Stderr, "Scoring %d criteria with %s/%s\n", len(units), o.Name(), model)
			results := scheduler.Run(context.Background(), units)
			summary := scoring.Aggregate(results, rubric.TypeWeights(r))

			if err := audit.WriteSummary(summary); err != nil {
				return err
			}

			eval := report.Evaluation{
				ProposalName: filepath.Base(args[0]),
				OracleName:   o.Name(),
				Model:        model,
				Results:      results,
				Summary:      summary,
				Started:      started,
				Finished:     time.Now(),
			}
			if err := report.SaveMarkdown(filepath.Join(outDir, "evaluation.md"), eval); err != nil {
				return err
			}

			fmt.Printf("Overall: %.2f/4 (%s)\n", summary.Overall, summary.Label)
			fmt.Fprintf(os.Stderr, "Outputs written to %s\n", outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotFile, "rubric", "rubric_snapshot.json", "rubric snapshot path")
	cmd.Flags().StringVar(&templatesDir, "templates", "", "prompt template directory (generated from rubric if empty)")
	cmd.Flags().StringVar(&outDir, "out", "output", "output directory")
	cmd.Flags().BoolVar(&skipCompliance, "skip-compliance", false, "skip administrative compliance checks")

	return cmd
}

func reviewCmd() *cobra.Command {
	var snapshotFile string
	var templatesDir string
	var outDir string
	var solicitationFile string

	cmd := &cobra.Command{
		Use:   "review [bundle-dir]",
		Short: "Run the multi-agent review panel",
		Long: `Fans the proposal out to every configured review agent concurrently.
	Free-text personas critique the proposal from their own angle; the panel
	scorer grades every rubric criterion. Outputs are merged into a
	consolidated scorecard and action-item list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			bundle, proposal, sections, err := openBundle(args[0], cfg.Run)
			if err != nil {
				return err
			}
			supporting, err := bundle.SupportingDocs()
			if err != nil {
				return err
			}

			r, units, err := loadRubric(snapshotFile)
			if err != nil {
				return err
			}
			templates, err := loadTemplates(templatesDir, r)
			if err != nil {
				return err
			}

			o, model, err := createOracle(cfg)
			if err != nil {
				return err
			}

			solicitation := ""
			if solicitationFile != "" {
				doc, err := document.Extract(solicitationFile)
				if err != nil {
					return fmt.Errorf("extract solicitation: %w", err)
				}
				solicitation = doc.FullText
			}

			agents, err := buildAgents(cfg.Run, o, model, templates, sections)
			if err != nil {
				return err
			}
			coordinator, err := review.NewCoordinator(agents,
				review.WithTopActionItems(cfg.Run.TopActionItems))
			if err != nil {
				return err
			}

			state := review.NewReviewState(proposal.FullText, supporting, r, units, solicitation)

			fmt.Fprintf(os.Stderr, "Running %d agents with %s/%s\n", len(agents), o.Name(), model)
			if err := coordinator.Run(context.Background(), state); err != nil {
				return err
			}

			if err := report.SaveReviewOutputs(outDir, filepath.Base(args[0]), state); err != nil {
				return err
			}

			if state.PanelSummary != nil {
				fmt.Printf("Overall: %.2f/4 (%s)\n", state.PanelSummary.Overall, state.PanelSummary.Label)
			}
			fmt.Printf("Action items: %d\n", len(state.ActionItems))
			fmt.Fprintf(os.Stderr, "Outputs written to %s\n", outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotFile, "rubric", "rubric_snapshot.json", "rubric snapshot path")
	cmd.Flags().StringVar(&templatesDir, "templates", "", "prompt template directory (generated from rubric if empty)")
	cmd.Flags().StringVar(&outDir, "out", "output", "output directory")
	cmd.Flags().StringVar(&solicitationFile, "solicitation", "", "solicitation document for reviewer context")

	return cmd
}

func agentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List available review agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AGENT\tKIND")
			for _, id := range review.PersonaIDs() {
				fmt.Fprintf(w, "%s\tfree-text persona\n", id)
			}
			fmt.Fprintf(w, "%s\tstructured rubric scorer\n", review.PanelScorerID)
			return w.Flush()
		},
	}
}

func validateCmd() *cobra.Command {
	var snapshotFile string

	cmd := &cobra.Command{
		Use:   "validate [bundle-dir]",
		Short: "Validate a bundle and rubric without calling the oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if len(args) > 0 {
				bundle := document.NewBundle(args[0], cfg.Run.RequiredFiles)
				if err := bundle.Verify(); err != nil {
					return err
				}
				fmt.Printf("Bundle %s is complete.\n", args[0])
			}

			if _, err := os.Stat(snapshotFile); err == nil {
				_, units, err := loadRubric(snapshotFile)
				if err != nil {
					return err
				}
				fmt.Printf("Rubric flattens to %d scoring units.\n", len(units))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotFile, "rubric", "rubric_snapshot.json", "rubric snapshot path")

	return cmd
}

func loadConfig() (*config.Config, error) {
	if runFile != "" {
		return config.LoadWithRunFile(runFile)
	}
	return config.Load()
}

// openBundle verifies the bundle and extracts the main proposal and the
// per-section texts.
func openBundle(dir string, run *config.RunConfig) (document.Bundle, *document.Document, map[string]string, error) {
	bundle := document.NewBundle(dir, run.RequiredFiles)
	if err := bundle.Verify(); err != nil {
		return bundle, nil, nil, err
	}
	proposal, err := bundle.MainProposal()
	if err != nil {
		return bundle, nil, nil, err
	}
	sections, err := bundle.SectionTexts()
	if err != nil {
		return bundle, nil, nil, err
	}
	return bundle, proposal, sections, nil
}

func runCompliance(bundle document.Bundle, proposal *document.Document, limits compliance.Limits) error {
	var budget compliance.Budget
	if path := bundle.BudgetFile(); path != "" && filepath.Ext(path) == ".csv" {
		var err error
		budget, err = compliance.ReadBudgetCSV(path)
		if err != nil {
			return err
		}
	}
	return compliance.Check(proposal, budget, limits)
}

func loadRubric(snapshotFile string) (*rubric.Rubric, []rubric.ScoringUnit, error) {
	r, err := rubric.LoadSnapshot(snapshotFile)
	if err != nil {
		return nil, nil, err
	}
	units, err := rubric.Flatten(r)
	if err != nil {
		return nil, nil, err
	}
	return r, units, nil
}

func loadTemplates(dir string, r *rubric.Rubric) (rubric.Templates, error) {
	if dir == "" {
		return rubric.GenerateTemplates(r), nil
	}
	return rubric.LoadTemplates(dir)
}

func createOracle(cfg *config.Config) (oracle.Oracle, string, error) {
	name := cfg.Run.Oracle
	if oracleFlag != "" {
		name = oracleFlag
	}
	model := cfg.Run.Model
	if modelFlag != "" {
		model = modelFlag
	}

	var o oracle.Oracle
	var err error
	switch name {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY not configured")
		}
		o, err = oracle.NewAnthropicOracle(cfg.AnthropicAPIKey)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY not configured")
		}
		o, err = oracle.NewOpenAIOracle(cfg.OpenAIAPIKey)
	case "google":
		if cfg.GoogleAPIKey == "" {
			return nil, "", fmt.Errorf("GOOGLE_API_KEY not configured")
		}
		o, err = oracle.NewGoogleOracle(cfg.GoogleAPIKey)
	case "mock":
		o = oracle.NewMockOracle()
	default:
		return nil, "", fmt.Errorf("unknown oracle %q", name)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to create %s oracle: %w", name, err)
	}

	if model == "" {
		if models := o.Models(); len(models) > 0 {
			model = models[0]
		}
	}
	return o, model, nil
}

// buildAgents assembles the panel from the run profile's agent roster. An
// empty roster means every built-in persona plus the panel scorer.
func buildAgents(run *config.RunConfig, o oracle.Oracle, model string, templates rubric.Templates, sections map[string]string) ([]review.Agent, error) {
	ids := run.Agents
	if len(ids) == 0 {
		ids = append(review.PersonaIDs(), review.PanelScorerID)
	}

	agents := make([]review.Agent, 0, len(ids))
	for _, id := range ids {
		if id == review.PanelScorerID {
			agents = append(agents, review.NewPanelScorer(o, model, run.SchedulerSettings(),
				review.WithPanelTemplates(templates),
				review.WithSectionTexts(sections),
				review.WithPanelTokenBudget(run.TokenBudget)))
			continue
		}
		persona, err := review.NewPersona(id, o, model)
		if err != nil {
			return nil, err
		}
		agents = append(agents, persona)
	}
	return agents, nil
}
