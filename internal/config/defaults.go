package config

const (
	DefaultChunkSize        = 800
	DefaultChunkOverlap     = 120
	DefaultOCRMinChars      = 10
	DefaultOCRDPI           = 300
	DefaultSimilarityTopK   = 5
	DefaultMemoryTokenLimit = 1000
	DefaultMaxUploadBytes   = 200 * 1024 * 1024
	DefaultCollectionName   = "user_session"

	DefaultLLMBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultLLMModel       = "gemini-2.0-flash"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultAPIKeyEnv      = "GEMINI_API"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8501
	}
	if cfg.Ingest.MaxUploadBytes == 0 {
		cfg.Ingest.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Ingest.OCRMinChars == 0 {
		cfg.Ingest.OCRMinChars = DefaultOCRMinChars
	}
	if cfg.Ingest.OCRDPI == 0 {
		cfg.Ingest.OCRDPI = DefaultOCRDPI
	}
	if cfg.Ingest.OCRLanguage == "" {
		cfg.Ingest.OCRLanguage = "eng"
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = DefaultChunkSize
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 100
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMModel
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	}
	if cfg.LLM.RetryDelayMillis == 0 {
		cfg.LLM.RetryDelayMillis = 1000
	}
	if cfg.LLM.RequestTimeoutSec == 0 {
		cfg.LLM.RequestTimeoutSec = 60
	}
	if cfg.Retrieval.CollectionName == "" {
		cfg.Retrieval.CollectionName = DefaultCollectionName
	}
	if cfg.Retrieval.SimilarityTopK == 0 {
		cfg.Retrieval.SimilarityTopK = DefaultSimilarityTopK
	}
	if cfg.Retrieval.KeywordWeight == 0 && cfg.Retrieval.SemanticWeight == 0 {
		cfg.Retrieval.KeywordWeight = 0.3
		cfg.Retrieval.SemanticWeight = 0.7
	}
	if cfg.Retrieval.Selector == "" {
		cfg.Retrieval.Selector = "rules"
	}
	if cfg.Retrieval.SummaryGroupSize == 0 {
		cfg.Retrieval.SummaryGroupSize = 12000
	}
	if cfg.Chat.MemoryTokenLimit == 0 {
		cfg.Chat.MemoryTokenLimit = DefaultMemoryTokenLimit
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf"}
	}
}
