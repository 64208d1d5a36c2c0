package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"vidsum-backend/internal/models"
	"vidsum-backend/internal/services"
	"vidsum-backend/internal/store"
)

// vidsum is the terminal front-end for the summarize workflow: paste a video
// link, get the summary, keep a history. Same lifecycle the browser client
// runs.
func main() {
	app := &cli.App{
		Name:  "vidsum",
		Usage: "Summarize YouTube videos via the configured summarizer webhook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "webhook",
				Usage:   "summarizer webhook URL",
				Value:   "http://localhost:5678/webhook-test/ytube",
				EnvVars: []string{"SUMMARIZER_WEBHOOK_URL"},
			},
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "summary store base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"BACKEND_URL"},
			},
			&cli.StringFlag{
				Name:    "email",
				Usage:   "owner identity for the summary history",
				Value:   models.AnonymousEmail,
				EnvVars: []string{"VIDSUM_EMAIL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Usage:     "Submit a video URL and print the summary",
				ArgsUsage: "<video-url>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-save",
						Usage: "skip mirroring the summary to the remote store",
					},
				},
				Action: summarizeAction,
			},
			{
				Name:   "history",
				Usage:  "List stored summaries for the owner identity",
				Action: historyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func summarizeAction(c *cli.Context) error {
	videoURL := strings.TrimSpace(c.Args().First())
	if videoURL == "" {
		return cli.Exit("usage: vidsum summarize <video-url>", 2)
	}

	// UX-level gate only; the summarizer itself extracts ids leniently.
	if !services.IsValidWatchURL(videoURL) {
		fmt.Fprintln(os.Stderr, "warning: this does not look like a YouTube watch URL")
	}

	summarizer := services.NewSummarizerService(c.String("webhook"))
	archive := services.NewArchiveClient(c.String("backend"))
	history := store.New(archive)

	return runSummarize(c.Context, summarizer, archive, history, c.String("email"), videoURL, !c.Bool("no-save"), os.Stdout, os.Stderr)
}

// runSummarize drives one summarize lifecycle: fetch the summary, append it
// to the session history, mirror it to the remote store, print the newest
// entry.
func runSummarize(ctx context.Context, summarizer *services.SummarizerService, archive *services.ArchiveClient, history *store.Store, ownerEmail, videoURL string, save bool, out, errOut io.Writer) error {
	summary, err := summarizer.Summarize(ctx, videoURL)
	if err != nil {
		return cli.Exit("Failed to fetch summary. Please try again.", 1)
	}

	summary.OwnerEmail = ownerEmail
	history.Append(summary)

	// Best-effort mirror; the summary is already in the history and a
	// storage failure must not retract it.
	if save {
		if err := archive.Persist(ctx, ownerEmail, summary); err != nil {
			fmt.Fprintf(errOut, "warning: %v\n", err)
		}
	}

	printSummary(out, history.All()[0])
	return nil
}

func historyAction(c *cli.Context) error {
	archive := services.NewArchiveClient(c.String("backend"))
	history := store.New(archive)

	if err := history.Load(c.Context, c.String("email")); err != nil {
		return cli.Exit(fmt.Sprintf("could not load history: %v", err), 1)
	}

	summaries := history.All()
	if len(summaries) == 0 {
		fmt.Println("No summaries yet.")
		return nil
	}

	for _, s := range summaries {
		fmt.Printf("%s  %s\n", s.CreatedAt.Format("2006-01-02 15:04"), s.VideoTitle)
		fmt.Printf("    %s\n", s.VideoURL)
	}

	return nil
}

func printSummary(w io.Writer, s *models.Summary) {
	fmt.Fprintf(w, "%s\n", s.VideoTitle)
	fmt.Fprintf(w, "%s\n\n", s.VideoURL)
	if s.SummaryText == "" {
		fmt.Fprintln(w, "(the summarizer returned no text)")
		return
	}
	fmt.Fprintln(w, s.SummaryText)
}
