package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	agentconfig "github.com/classmark/classmark/internal/agent/config"
	"github.com/classmark/classmark/internal/agent/provider"
	"github.com/classmark/classmark/internal/agent/provider/deepface"
	"github.com/classmark/classmark/internal/agent/provider/mock"
	"github.com/classmark/classmark/internal/agent/queue"
	"github.com/classmark/classmark/internal/agent/syncclient"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Classroom attendance capture agent",
	Long: `The Classmark agent watches a classroom camera, resolves faces
against the school's reference set, and reports attendance to the
Classmark server. Events that cannot be delivered are kept in a
durable on-disk queue and synced later.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		// .env file is optional, don't fail if not found
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "agent.yaml", "Path to the agent config file")
}

func loadConfig() (agentconfig.Config, error) {
	return agentconfig.Load(configPath)
}

func newSyncClient(cfg agentconfig.Config) *syncclient.Client {
	return syncclient.New(syncclient.Config{
		BaseURL: cfg.Server.URL,
		APIKey:  cfg.Server.APIKey,
		Timeout: cfg.Server.Timeout,
	})
}

func newProvider(cfg agentconfig.Config) (provider.EmbeddingProvider, error) {
	switch cfg.Provider.Kind {
	case "deepface":
		return deepface.NewProvider(deepface.Config{
			BaseURL:    cfg.Provider.URL,
			Timeout:    cfg.Provider.Timeout,
			Model:      cfg.Provider.Model,
			Detector:   cfg.Provider.Detector,
			RetryCount: 3,
		}), nil
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider kind: %s", cfg.Provider.Kind)
	}
}

func openQueue(cfg agentconfig.Config) (*queue.Queue, error) {
	return queue.Open(cfg.QueuePath)
}
