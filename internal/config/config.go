package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// Stages and Brands are the deployment profiles the operator can pick.
var (
	Stages = []string{"prod", "dev"}
	Brands = []string{"clo3d", "closet", "md"}
)

// Config holds everything a run needs, resolved once at startup and
// injected into the components that use it.
type Config struct {
	Stage string
	Brand string

	MongoURI              string
	MongoDBName           string
	ChatHistoryCollection string
	UsersCollection       string
	ArticlesCollection    string
	FeedbackCollection    string

	AzureOpenAIService  string
	AzureOpenAIEndpoint string
	AzureOpenAIKey      string
	ChatDeployment      string
	EmbeddingDeployment string

	AzureSearchService string
	AzureSearchIndex   string
	AzureSearchKey     string
}

// Load reads `.env.<stage>` and resolves the brand-prefixed variables. A
// missing env file is not an error; the variables may already be set in
// the environment.
func Load(stage, brand string) (*Config, error) {
	if !slices.Contains(Stages, stage) {
		return nil, fmt.Errorf("unknown stage %q, want one of %v", stage, Stages)
	}
	if !slices.Contains(Brands, brand) {
		return nil, fmt.Errorf("unknown brand %q, want one of %v", brand, Brands)
	}

	// Not fatal when missing: production deployments set env variables
	// directly.
	_ = godotenv.Load(fmt.Sprintf(".env.%s", stage))

	brandKey := strings.ToUpper(brand)
	service := getEnv("AZURE_OPENAI_SERVICE", "")

	return &Config{
		Stage: stage,
		Brand: brand,

		MongoURI:              getEnv("MONGO_URI", ""),
		MongoDBName:           getEnv(brandKey+"_MONGO_DB_NAME", brand+"-dev"),
		ChatHistoryCollection: getEnv("MONGO_COLLECTION_CHATHISTORY", "chat_history"),
		UsersCollection:       getEnv("MONGO_COLLECTION_USERS", "users"),
		ArticlesCollection:    getEnv("MONGO_COLLECTION_ARTICLES", "articles"),
		FeedbackCollection:    getEnv("MONGO_COLLECTION_FEEDBACK", "feedback"),

		AzureOpenAIService:  service,
		AzureOpenAIEndpoint: fmt.Sprintf("https://%s.openai.azure.com", service),
		AzureOpenAIKey:      getEnv("AZURE_OPENAI_KEY", ""),
		ChatDeployment:      getEnv("AZURE_OPENAI_CHATGPT_DEPLOYMENT", ""),
		EmbeddingDeployment: getEnv("AZURE_OPENAI_EMB_DEPLOYMENT", ""),

		AzureSearchService: getEnv("AZURE_SEARCH_SERVICE", ""),
		AzureSearchIndex:   getEnv(brandKey+"_AZURE_SEARCH_INDEX", "clo3d-index-english"),
		AzureSearchKey:     getEnv("AZURE_SEARCH_KEY", ""),
	}, nil
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
