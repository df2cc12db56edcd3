package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fun-quiz/internal/app"
	"fun-quiz/internal/domain"
	"fun-quiz/internal/report"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.FgHiBlack)
)

type playOptions struct {
	name          string
	category      string
	count         int
	timeLimit     int
	noFeedback    bool
	questionsFile string
	exportPath    string
}

// NewPlayCmd runs an interactive quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	opts := playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			settings := quizDefaults(cfg)
			if cmd.Flags().Changed("category") {
				settings.Category = opts.category
			}
			if cmd.Flags().Changed("count") {
				settings.QuestionCount = opts.count
			}
			if cmd.Flags().Changed("time-limit") {
				settings.TimeLimitSeconds = opts.timeLimit
			}
			if opts.noFeedback {
				settings.ShowFeedback = false
			}

			p := newPlayer(d.service, cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Leaderboard.Top)
			if opts.questionsFile != "" {
				if err := p.upload(cmd.Context(), opts.questionsFile); err != nil {
					return err
				}
			}
			return p.play(cmd.Context(), opts.name, settings, opts.exportPath)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "Player", "name shown on the leaderboard")
	cmd.Flags().StringVar(&opts.category, "category", domain.AllCategories, "category to play")
	cmd.Flags().IntVar(&opts.count, "count", 5, "number of questions")
	cmd.Flags().IntVar(&opts.timeLimit, "time-limit", 0, "seconds per question, 0 disables the timer")
	cmd.Flags().BoolVar(&opts.noFeedback, "no-feedback", false, "hide correctness after each answer")
	cmd.Flags().StringVar(&opts.questionsFile, "questions", "", "CSV file to load questions from")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "write results to this .csv or .xlsx file")
	return cmd
}

var errInputClosed = errors.New("input closed")

type player struct {
	service *app.QuizService
	in      *bufio.Scanner
	out     io.Writer
	topN    int
}

func newPlayer(service *app.QuizService, in io.Reader, out io.Writer, topN int) *player {
	if topN <= 0 {
		topN = 5
	}
	return &player{service: service, in: bufio.NewScanner(in), out: out, topN: topN}
}

func (p *player) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stats, err := p.service.Upload(ctx, f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	okColor.Fprintf(p.out, "Loaded %d questions from upload.\n", stats.Loaded)
	if stats.Dropped > 0 {
		warnColor.Fprintf(p.out, "%d rows skipped (missing question or answer).\n", stats.Dropped)
	}
	return nil
}

func (p *player) play(ctx context.Context, name string, settings domain.QuizConfiguration, exportPath string) error {
	run := p.service.NewRun(strings.TrimSpace(name))
	for {
		if err := p.service.Setup(ctx, run, settings); err != nil {
			if errors.Is(err, domain.ErrEmptyPool) {
				warnColor.Fprintf(p.out, "No questions for category %q. Try one of: %s\n", settings.Category, strings.Join(p.service.Categories(), ", "))
			}
			return err
		}
		fmt.Fprintf(p.out, "Category: %s • Questions: %d\n", run.Config.Category, run.Total())
		if err := p.service.Start(ctx, run); err != nil {
			return err
		}

		result, err := p.playRun(ctx, run)
		if err != nil {
			return err
		}
		p.printResult(ctx, result)
		if exportPath != "" {
			if err := exportResult(exportPath, result.Answers); err != nil {
				failColor.Fprintf(p.out, "Export failed: %v\n", err)
			} else {
				fmt.Fprintf(p.out, "Results written to %s\n", exportPath)
			}
		}

		fmt.Fprint(p.out, "Play again? [y/N] ")
		line, err := p.readLine()
		if err != nil || !strings.HasPrefix(strings.ToLower(line), "y") {
			return nil
		}
		run.Reset()
	}
}

func (p *player) playRun(ctx context.Context, run *app.Run) (domain.Result, error) {
	for {
		if run.State() == app.StateAnswered && run.Index+1 == run.Total() {
			result, err := p.service.Finish(ctx, run)
			if errors.Is(err, domain.ErrStorageWrite) {
				warnColor.Fprintf(p.out, "Score not saved: %v\n", err)
				return result, nil
			}
			return result, err
		}

		if _, fired, err := p.service.Tick(ctx, run); err != nil {
			return domain.Result{}, err
		} else if fired {
			warnColor.Fprintln(p.out, "⏱ Time's up! Question skipped.")
			continue
		}

		pres, err := run.Present()
		if err != nil {
			return domain.Result{}, err
		}
		p.printQuestion(pres)

		line, err := p.readLine()
		if err != nil {
			return domain.Result{}, err
		}

		switch choice := strings.ToLower(line); {
		case choice == "s" || choice == "skip":
			if _, _, err := p.service.Skip(ctx, run, pres.Index); err != nil {
				return domain.Result{}, err
			}
			dimColor.Fprintln(p.out, "Skipped.")
			continue
		default:
			n, convErr := strconv.Atoi(choice)
			if convErr != nil || n < 1 || n > len(pres.Options) {
				warnColor.Fprintf(p.out, "Enter 1-%d, or s to skip.\n", len(pres.Options))
				continue
			}
			rec, applied, err := p.service.Submit(ctx, run, pres.Index, pres.Options[n-1])
			if err != nil {
				return domain.Result{}, err
			}
			switch {
			case !applied:
			case rec.Skipped():
				warnColor.Fprintln(p.out, "⏱ Time's up! Question skipped.")
				continue
			case !run.Config.ShowFeedback:
			case rec.IsCorrect:
				okColor.Fprintln(p.out, "✅ Correct!")
			default:
				failColor.Fprintf(p.out, "❌ Wrong. Correct answer: %s\n", rec.Correct)
			}
		}

		if run.State() == app.StateAnswered && run.Index+1 < run.Total() {
			if err := p.service.Next(ctx, run); err != nil {
				return domain.Result{}, err
			}
		}
	}
}

func (p *player) printQuestion(pres app.Presentation) {
	fmt.Fprintf(p.out, "\nQuestion %d of %d\n", pres.Index+1, pres.Total)
	fmt.Fprintln(p.out, pres.Question)
	for i, opt := range pres.Options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	if pres.Deadline != nil {
		dimColor.Fprintf(p.out, "⏱ Time left: %d s\n", pres.TimeLeftSeconds)
	}
	fmt.Fprint(p.out, "> ")
}

func (p *player) printResult(ctx context.Context, result domain.Result) {
	okColor.Fprintf(p.out, "\nYou scored %d / %d in %d seconds.\n", result.Score, result.Total, result.ElapsedSeconds)
	fmt.Fprintln(p.out, "Review")
	for _, row := range result.Report {
		switch row.Outcome {
		case domain.OutcomeSkipped:
			warnColor.Fprintf(p.out, "  ❗ %s (skipped, correct: %s)\n", row.Question, row.Correct)
		case domain.OutcomeCorrect:
			okColor.Fprintf(p.out, "  ✅ %s (you: %s)\n", row.Question, row.Selected)
		default:
			failColor.Fprintf(p.out, "  ❌ %s (you: %s, correct: %s)\n", row.Question, row.Selected, row.Correct)
		}
	}
	printLeaderboard(ctx, p.out, p.service, p.topN)
}

func (p *player) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func exportResult(path string, answers []domain.AnswerRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = report.WriteXLSX(f, answers)
	} else {
		err = report.WriteCSV(f, answers)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
