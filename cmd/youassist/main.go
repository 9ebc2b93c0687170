package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/gin-gonic/gin"

	"youassist/internal/api"
	"youassist/internal/config"
	"youassist/internal/docgen"
	"youassist/internal/guard"
	"youassist/internal/rag/chunkstore"
	"youassist/internal/rag/embeddings"
	"youassist/internal/rag/interfaces"
	"youassist/internal/rag/llms"
	"youassist/internal/rag/pipeline"
	"youassist/internal/rag/splitters"
	"youassist/internal/transcript"
	"youassist/pkg/circuitbreaker"
	"youassist/pkg/httpclient"
	"youassist/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the yaml configuration file")
	flag.Parse()

	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("youassist")
	appLogger.Info("Starting YouAssist service...")

	// Secrets may live in a local .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger.Info("Configuration loaded successfully.")

	store, err := chunkstore.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open chunk store: %v", err)
	}
	defer store.Close()

	splitter, err := splitters.NewRecursiveSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to create splitter: %v", err)
	}

	embedder, err := embeddings.New(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding model: %v", err)
	}

	llm, err := llms.New(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create generation backend: %v", err)
	}

	inputChain, err := guard.BuildInputChain(cfg.Guard.Input)
	if err != nil {
		log.Fatalf("Failed to build input scanner chain: %v", err)
	}
	outputChain, err := guard.BuildOutputChain(cfg.Guard.Output)
	if err != nil {
		log.Fatalf("Failed to build output scanner chain: %v", err)
	}

	ragPipeline := pipeline.New(
		splitter, embedder, store, llm, inputChain, outputChain,
		pipeline.Options{
			TopK: cfg.RAG.TopK,
			Summary: interfaces.CompletionOptions{
				Temperature: cfg.RAG.Summary.Temperature,
				MaxTokens:   cfg.RAG.Summary.MaxTokens,
			},
			Chat: interfaces.CompletionOptions{
				Temperature: cfg.RAG.Chat.Temperature,
				MaxTokens:   cfg.RAG.Chat.MaxTokens,
			},
		},
		appLogger,
	)

	fetcher, err := newTranscriptFetcher(cfg.Transcript, appLogger)
	if err != nil {
		log.Fatalf("Failed to create transcript fetcher: %v", err)
	}

	handler := api.NewHandler(ragPipeline, fetcher, docgen.NewRenderer(), appLogger)

	gin.SetMode(gin.ReleaseMode)
	router, err := api.NewRouter(handler, cfg.Server, appLogger)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info("HTTP server listening at " + cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown: " + err.Error())
	}
	appLogger.Info("Server gracefully stopped")
}

func newTranscriptFetcher(cfg config.TranscriptConfig, appLogger *logger.Logger) (*transcript.Fetcher, error) {
	timeout, err := config.ParseDuration(cfg.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}

	var breaker circuitbreaker.CircuitBreaker
	if cfg.CircuitBreaker.Enabled {
		cbTimeout, err := config.ParseDuration(cfg.CircuitBreaker.Timeout, 30*time.Second)
		if err != nil {
			return nil, err
		}
		breaker = circuitbreaker.New(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.SuccessThreshold, cbTimeout)
	}

	client := httpclient.New(httpclient.Options{Timeout: timeout, Breaker: breaker})
	return transcript.NewFetcher(client, cfg.BaseURL, cfg.Language, appLogger), nil
}
