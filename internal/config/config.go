// Package config defines the notewire configuration and its loader.
package config

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Router    RouterConfig    `yaml:"router"`
	Gmail     GmailConfig     `yaml:"gmail"`
	Agents    []AgentConfig   `yaml:"agents"`
	LogLevel  string          `yaml:"log_level"`
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig holds the connection URL shared by the session and vector
// stores.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// OpenAIConfig holds reasoning-engine and embedding settings.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	EmbeddingDim   int    `yaml:"embedding_dim"`
}

// RetrievalConfig controls context retrieval.
type RetrievalConfig struct {
	// FetchK is how many chunks to request from the vector store before
	// client-side score filtering.
	FetchK   int     `yaml:"fetch_k"`
	MinScore float64 `yaml:"min_score"`
}

// RouterConfig controls the classifier agent.
type RouterConfig struct {
	// SuggestOnIngest runs the router after every document ingestion and
	// reports the suggested agent back to the client.
	SuggestOnIngest bool `yaml:"suggest_on_ingest"`
}

// GmailConfig holds paths to Gmail API credentials. Empty paths disable the
// email tool.
type GmailConfig struct {
	Credentials string `yaml:"credentials"`
	Token       string `yaml:"token"`
}

// AgentConfig declares one agent in the registry.
type AgentConfig struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"` // "message" or "action"
	Description string `yaml:"description"`
	Prompt      string `yaml:"prompt"`
}

// Defaults returns a Config populated with built-in defaults, including the
// stock agent roster.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 65432,
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379",
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4.1",
			EmbeddingModel: "text-embedding-3-small",
			EmbeddingDim:   1536,
		},
		Retrieval: RetrievalConfig{
			FetchK:   10,
			MinScore: 0.75,
		},
		Router: RouterConfig{
			SuggestOnIngest: true,
		},
		Agents: []AgentConfig{
			{
				Name:        "MessageAgent",
				Kind:        "message",
				Description: "Answers general questions using the stored notes as context.",
				Prompt:      "You are a helpful assistant",
			},
			{
				Name:        "TodoListAgent",
				Kind:        "message",
				Description: "Tracks tasks and to-do items mentioned in the notes.",
				Prompt:      "You are an assistant that manages the user's to-do list",
			},
		},
		LogLevel: "info",
	}
}
