package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"notewire/internal/agent"
	"notewire/internal/config"
	"notewire/internal/ingest"
	"notewire/internal/llm"
	"notewire/internal/logging"
	"notewire/internal/mail"
	"notewire/internal/retrieval"
	"notewire/internal/server"
	"notewire/internal/session"
	"notewire/internal/vector"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logging.New(nil, cfg.LogLevel)

	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is not set")
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.URL, err)
	}

	engine := llm.NewOpenAIEngine(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	embedder := llm.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbeddingDim)

	sessions := session.NewRedisStore(client, "", 0)
	chunks, err := vector.NewRedisStore(ctx, client, embedder)
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %w", err)
	}

	contextTool := retrieval.NewTool(retrieval.NewService(chunks, cfg.Retrieval.FetchK, cfg.Retrieval.MinScore))
	baseTools := []llm.Tool{contextTool}

	actionTools := baseTools
	if cfg.Gmail.Credentials != "" && cfg.Gmail.Token != "" {
		sender, err := mail.NewGmailSender(ctx, cfg.Gmail.Credentials, cfg.Gmail.Token)
		if err != nil {
			return fmt.Errorf("failed to initialize gmail sender: %w", err)
		}
		actionTools = append(append([]llm.Tool{}, baseTools...), mail.NewTool(sender))
		log.Info().Msg("email tool enabled")
	}

	// The router chooses from the roster; the addressable registry also
	// carries the router itself so clients can delegate routing entirely.
	roster := agent.NewRegistry()
	registry := agent.NewRegistry()
	for _, ac := range cfg.Agents {
		var a agent.Agent
		switch ac.Kind {
		case "action":
			a = agent.NewActionAgent(ac.Name, ac.Description, ac.Prompt, engine, sessions, actionTools...)
		default:
			a = agent.NewMessageAgent(ac.Name, ac.Description, ac.Prompt, engine, sessions, baseTools...)
		}
		if err := roster.Register(a); err != nil {
			return fmt.Errorf("failed to register agent: %w", err)
		}
		if err := registry.Register(a); err != nil {
			return fmt.Errorf("failed to register agent: %w", err)
		}
		log.Info().Str("agent", ac.Name).Str("kind", ac.Kind).Msg("agent registered")
	}

	router := agent.NewRouterAgent("ChoiceAgent", engine, roster)
	if err := registry.Register(router); err != nil {
		return fmt.Errorf("failed to register router: %w", err)
	}

	srv, err := server.New(server.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Registry:        registry,
		Router:          router,
		Ingestor:        ingest.New(chunks),
		SuggestOnIngest: cfg.Router.SuggestOnIngest,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}
	return srv.Serve(ctx)
}
