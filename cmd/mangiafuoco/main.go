package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/mangiafuoco/pkg/events"
	"github.com/go-go-golems/mangiafuoco/pkg/inference"
	"github.com/go-go-golems/mangiafuoco/pkg/interview"
	"github.com/go-go-golems/mangiafuoco/pkg/session"
	"github.com/go-go-golems/mangiafuoco/pkg/ui"
)

var rootCmd = &cobra.Command{
	Use:   "mangiafuoco",
	Short: "A terminal mock job interview with live streaming and feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(viper.GetString("log-level"))
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().String("openai-api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY)")
	rootCmd.Flags().String("openai-base-url", "", "override the OpenAI API base URL")
	rootCmd.Flags().String("chat-model", "", "model used for interview replies")
	rootCmd.Flags().String("feedback-model", "", "model used for the feedback score")
	rootCmd.Flags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().String("log-file", "", "write logs to this file instead of stderr")

	err := viper.BindPFlags(rootCmd.Flags())
	cobra.CheckErr(err)

	err = viper.BindEnv("openai-api-key", "OPENAI_API_KEY")
	cobra.CheckErr(err)
	err = viper.BindEnv("openai-base-url", "OPENAI_BASE_URL")
	cobra.CheckErr(err)
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if logFile := viper.GetString("log-file"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.Logger = log.Output(f)
			return
		}
	}

	// the TUI owns stdout, so interactive logs go to stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func run(ctx context.Context) error {
	apiKey := viper.GetString("openai-api-key")
	if apiKey == "" {
		return errors.New("no OpenAI API key set, use --openai-api-key or OPENAI_API_KEY")
	}

	catalog, err := interview.LoadDefaultCatalog()
	if err != nil {
		return err
	}

	chatModel := viper.GetString("chat-model")
	if chatModel == "" {
		chatModel = catalog.Models.Chat
	}
	feedbackModel := viper.GetString("feedback-model")
	if feedbackModel == "" {
		feedbackModel = catalog.Models.Feedback
	}

	client, err := inference.NewClient(inference.ClientSettings{
		APIKey:  apiKey,
		BaseURL: viper.GetString("openai-base-url"),
	})
	if err != nil {
		return err
	}

	engine := inference.NewOpenAIEngine(client, chatModel)
	scorer := inference.NewOpenAIScorer(client, feedbackModel)
	feedback := interview.NewFeedbackRequestor(scorer)

	router, err := events.NewEventRouter()
	if err != nil {
		return err
	}
	defer func() {
		if err := router.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event router")
		}
	}()

	sink := events.NewWatermillSink(router.Publisher, "chat")

	controller := session.NewController(engine, feedback,
		session.WithEventSink(sink),
		session.WithModelName(chatModel),
	)

	model := ui.NewModel(controller, catalog)
	p := tea.NewProgram(model, tea.WithAltScreen())

	router.AddHandler("ui", "chat", ui.ForwardToProgram(p))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer log.Debug().Msg("event router finished")
		return router.Run(ctx)
	})
	eg.Go(func() error {
		// publish only once the router delivers, so no early events drop
		<-router.Running()
		defer cancel()
		_, err := p.Run()
		return err
	})

	return eg.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
