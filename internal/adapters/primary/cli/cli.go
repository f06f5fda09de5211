// Package cli exposes the summarizer on the command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"summarizer-worker/config"
	"summarizer-worker/internal/core/domain"
	"summarizer-worker/internal/core/ports"
)

// CLI wires the summarizer service into cobra commands
type CLI struct {
	service ports.SummarizerService
	queue   ports.Queue
	config  *config.Config
}

// NewCLI creates a new CLI instance. queue may be nil; async
// submission is then unavailable.
func NewCLI(service ports.SummarizerService, queue ports.Queue, cfg *config.Config) *CLI {
	return &CLI{
		service: service,
		queue:   queue,
		config:  cfg,
	}
}

// GetRootCommand returns the root cobra command
func (cli *CLI) GetRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "summarizer-worker",
		Short: "Summarizer Worker CLI - Summarize documents via command line",
		Long: `Summarizer Worker CLI provides command line access to text summarization.

Features:
- Summarize text from stdin or from a file (.txt, .md, .pdf, .html)
- Long inputs are split into token-budgeted chunks and recombined
- Tune generation parameters per call
- Submit jobs to the async queue`,
		Version: "1.0.0",
	}

	rootCmd.AddCommand(cli.getSummarizeCommand())
	rootCmd.AddCommand(cli.getModelsCommand())
	rootCmd.AddCommand(cli.getStatsCommand())

	return rootCmd
}

func (cli *CLI) getSummarizeCommand() *cobra.Command {
	summarizeCmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Summarize text",
		Long: `Summarize text given as an argument, from a file, or from stdin.

Examples:
  summarizer-worker summarize "Long text to summarize..."
  summarizer-worker summarize --file report.pdf
  cat article.txt | summarizer-worker summarize`,
		Args: cobra.MaximumNArgs(1),
		RunE: cli.summarize,
	}

	summarizeCmd.Flags().String("file", "", "Summarize a file instead of text (.txt, .md, .pdf, .html)")
	summarizeCmd.Flags().String("model", "", "Model to use (defaults to the active model)")
	summarizeCmd.Flags().Int("max-length", 150, "Maximum summary length in tokens")
	summarizeCmd.Flags().Int("min-length", 30, "Minimum summary length in tokens")
	summarizeCmd.Flags().Int("num-beams", 4, "Number of beams / candidates")
	summarizeCmd.Flags().Float64("temperature", 1.0, "Sampling temperature (used with --do-sample)")
	summarizeCmd.Flags().Float64("top-p", 0.95, "Nucleus sampling probability (used with --do-sample)")
	summarizeCmd.Flags().Bool("do-sample", false, "Enable sampling instead of greedy decoding")
	summarizeCmd.Flags().Bool("no-cache", false, "Bypass the summary cache")
	summarizeCmd.Flags().Bool("async", false, "Submit as an async job instead of waiting")
	summarizeCmd.Flags().String("output", "", "Write the summary to a file instead of stdout")
	summarizeCmd.Flags().Bool("json", false, "Print the full result as JSON")

	return summarizeCmd
}

func (cli *CLI) getModelsCommand() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		RunE:  cli.listModels,
	}

	selectCmd := &cobra.Command{
		Use:   "select [model]",
		Short: "Switch the active model",
		Args:  cobra.ExactArgs(1),
		RunE:  cli.selectModel,
	}
	modelsCmd.AddCommand(selectCmd)

	return modelsCmd
}

func (cli *CLI) getStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue statistics",
		RunE:  cli.showStats,
	}
}

func (cli *CLI) summarize(cmd *cobra.Command, args []string) error {
	filePath, _ := cmd.Flags().GetString("file")
	model, _ := cmd.Flags().GetString("model")
	maxLength, _ := cmd.Flags().GetInt("max-length")
	minLength, _ := cmd.Flags().GetInt("min-length")
	numBeams, _ := cmd.Flags().GetInt("num-beams")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	topP, _ := cmd.Flags().GetFloat64("top-p")
	doSample, _ := cmd.Flags().GetBool("do-sample")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	async, _ := cmd.Flags().GetBool("async")
	outputPath, _ := cmd.Flags().GetString("output")
	asJSON, _ := cmd.Flags().GetBool("json")

	req := domain.SummaryRequest{
		Model: model,
		Params: domain.GenerationParams{
			MaxLength:   maxLength,
			MinLength:   minLength,
			NumBeams:    numBeams,
			Temperature: temperature,
			TopP:        topP,
			DoSample:    doSample,
		},
		SkipCache: noCache,
	}

	if filePath == "" {
		text, err := cli.readInputText(args)
		if err != nil {
			return err
		}
		req.Text = text
	}

	if async {
		return cli.submitAsync(filePath, req)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var (
		result *domain.SummaryResult
		err    error
	)
	if filePath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Summarizing file %s...\n", filePath)
		result, err = cli.service.SummarizeFile(ctx, filePath, req)
	} else {
		result, err = cli.service.Summarize(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Summary), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Summary written to %s (%s path, %d chunks)\n",
			outputPath, result.Path, result.ChunkCount)
		return nil
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary)
	return nil
}

// readInputText takes the positional argument or falls back to stdin
func (cli *CLI) readInputText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	return "", fmt.Errorf("no input: pass text as an argument, use --file, or pipe to stdin")
}

func (cli *CLI) submitAsync(filePath string, req domain.SummaryRequest) error {
	if cli.queue == nil {
		return fmt.Errorf("async submission requires a queue connection")
	}
	if filePath != "" {
		return fmt.Errorf("async submission accepts text input only")
	}

	job := &ports.SummarizeJob{
		ID:      uuid.New().String(),
		Request: req,
	}
	if err := cli.queue.Enqueue(context.Background(), job); err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	fmt.Printf("Job submitted: %s\n", job.ID)
	return nil
}

func (cli *CLI) listModels(cmd *cobra.Command, args []string) error {
	models := cli.service.Models()
	if len(models) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No models configured")
		return nil
	}

	for _, m := range models {
		marker := " "
		if m.Active {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (backend: %s, device: %s)\n", marker, m.ID, m.Backend, m.Device)
	}
	return nil
}

func (cli *CLI) selectModel(cmd *cobra.Command, args []string) error {
	modelID := args[0]
	if err := cli.service.SelectModel(modelID); err != nil {
		return fmt.Errorf("failed to select model: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active model: %s\n", modelID)
	return nil
}

func (cli *CLI) showStats(cmd *cobra.Command, args []string) error {
	if cli.queue == nil {
		return fmt.Errorf("stats require a queue connection")
	}

	depth, err := cli.queue.Depth(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get queue stats: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Queue: %s\n", cli.config.Worker.QueueName)
	fmt.Fprintf(cmd.OutOrStdout(), "Pending jobs: %d\n", depth)
	return nil
}
