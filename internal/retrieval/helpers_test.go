package retrieval

import "github.com/hyperjump/pdfchat/internal/config"

func testRetrievalConfig() config.RetrievalConfig {
	return config.Default().Retrieval
}
