package cmd

import (
	"os"

	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// batchCmd scores many texts at once.
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Score many texts and print one row per text.",
	Long: `Score every text from the given files, --glob matches or stdin.

Files are cut into texts according to --split:
- file      one text per file (default)
- line      one text per non-blank line
- paragraph one text per blank-line separated block

Texts are scored concurrently by --workers workers. Results keep input order unless
--sort is given. A text that cannot be scored is reported in its row and never stops
the batch.

Examples:
  # Score each line of a subtitle file
  transcomplex batch --split line subtitles.srt

  # Rank every markdown page, hardest first, top 20
  transcomplex batch --glob 'docs/**/*.md' --sort --limit 20

  # Export per-text metrics for a spreadsheet
  transcomplex batch --split paragraph --output csv --output-file scores.csv book.txt`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		inputs, err := core.CollectInputs(cfg, args, pipedStdin())
		if err != nil {
			contract.LogFatal("Cannot collect texts", err)
		}
		var progress core.Progress
		if showProgress(cfg) {
			progress = newProgressBar(len(inputs))
		}
		if err := core.ExecuteBatch(rootCtx, cfg, cacheManager, inputs, progress); err != nil {
			contract.LogFatal("Cannot run batch", err)
		}
	},
}

// showProgress reports whether a progress bar fits the run: text output on a terminal stderr.
func showProgress(cfg *contract.Config) bool {
	return cfg.Output == schema.TextOut && term.IsTerminal(int(os.Stderr.Fd()))
}

// progressBar renders batch progress on stderr.
type progressBar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

var _ core.Progress = (*progressBar)(nil)

func newProgressBar(total int) *progressBar {
	p := mpb.NewWithContext(rootCtx, mpb.WithOutput(os.Stderr), mpb.WithWidth(40))
	bar := p.AddBar(int64(total),
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name("Scoring "),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(decor.Percentage(decor.WCSyncSpace)),
	)
	return &progressBar{p: p, bar: bar}
}

// Increment advances the bar by one text.
func (pb *progressBar) Increment() {
	pb.bar.Increment()
}

// Done drops an unfinished bar and waits for the final render.
func (pb *progressBar) Done() {
	if !pb.bar.Completed() {
		pb.bar.Abort(true)
	}
	pb.p.Wait()
}
