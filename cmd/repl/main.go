package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	agent "github.com/qiwang999/service-topo-agent"
	"github.com/qiwang999/service-topo-agent/embedder"
	openaiembedder "github.com/qiwang999/service-topo-agent/embedder/openai"
	"github.com/qiwang999/service-topo-agent/executor"
	neo4jexecutor "github.com/qiwang999/service-topo-agent/executor/neo4j"
	"github.com/qiwang999/service-topo-agent/generator"
	openaigenerator "github.com/qiwang999/service-topo-agent/generator/openai"
	"github.com/qiwang999/service-topo-agent/orchestrator"
	"github.com/qiwang999/service-topo-agent/summarizer"
	llmsummarizer "github.com/qiwang999/service-topo-agent/summarizer/llm"
	"github.com/qiwang999/service-topo-agent/validator"
	llmvalidator "github.com/qiwang999/service-topo-agent/validator/llm"
	"github.com/qiwang999/service-topo-agent/vectorstore"
	memorystore "github.com/qiwang999/service-topo-agent/vectorstore/memory"
)

var (
	cfg struct {
		// Generator config
		GeneratorKey string `help:"API Key for the generator" env:"GENERATOR_API_KEY" default:""`
		Generator    string `help:"Model identifier for generator" default:"gpt-4o-mini"`

		// Embedder config
		EmbedderKey string `help:"API Key for the embedder" env:"EMBEDDER_API_KEY" default:""`
		Embedder    string `help:"Model identifier for embedder" default:"text-embedding-3-small"`

		// Graph config
		Neo4jLocation string `help:"Bolt address of the graph database" env:"NEO4J_URI" default:"bolt://localhost:7687"`
		Neo4jUsername string `help:"Graph database username" env:"NEO4J_USERNAME" default:"neo4j"`
		Neo4jPassword string `help:"Graph database password" env:"NEO4J_PASSWORD" default:""`

		// Agent config
		RunMode  string `help:"Default run mode (standard or fast)" default:"standard"`
		Examples string `help:"Path to the static example library" default:"examples.json"`
	}
)

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)
	ctx := context.Background()

	gen := openaigenerator.NewGenerator(
		generator.WithApiKey(cfg.GeneratorKey),
		generator.WithModel(cfg.Generator),
	)

	emb := openaiembedder.NewEmbedder(
		embedder.WithApiKey(cfg.EmbedderKey),
		embedder.WithModel(cfg.Embedder),
	)

	exec := neo4jexecutor.NewExecutor(
		executor.WithLocation(cfg.Neo4jLocation),
		executor.WithAuth(cfg.Neo4jUsername, cfg.Neo4jPassword),
	)

	a := agent.New(
		agent.WithStore(memorystore.NewStore(vectorstore.WithEmbedder(emb))),
		agent.WithGenerator(gen),
		agent.WithValidator(llmvalidator.NewValidator(validator.WithGenerator(gen))),
		agent.WithExecutor(exec),
		agent.WithSummarizer(llmsummarizer.NewSummarizer(summarizer.WithGenerator(gen))),
		agent.WithFastMode(cfg.RunMode == "fast"),
		agent.WithStaticExamplesPath(cfg.Examples),
	)

	if n, err := a.SeedEmbeddings(ctx); err != nil {
		fmt.Printf("warning: could not seed example embeddings: %v\n", err)
	} else {
		fmt.Printf("seeded %d example embeddings\n", n)
	}

	fmt.Println("--- Service Topology Agent ---")
	fmt.Println("Ask questions about your service graph. Type 'exit' to quit.")

	var history []orchestrator.Turn

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if len(question) == 0 {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		result, err := a.Respond(ctx, history, question)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		history = result.History

		if result.CacheHit {
			fmt.Printf("(cache hit, similarity %.2f)\n", result.CacheSimilarity)
		}
		if len(result.Cypher) > 0 {
			fmt.Printf("cypher: %s\n", result.Cypher)
		}
		fmt.Println(result.Summary)
	}
}
