package domain

import (
	"fmt"
	"strings"
)

// Provider identifies an LLM/embedding backend
type Provider string

const (
	ProviderOpenAI  Provider = "openai"
	ProviderAzure   Provider = "azure"
	ProviderGemini  Provider = "gemini"
	ProviderBedrock Provider = "bedrock"
)

// ParseProvider normalizes a provider name
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderAzure:
		return ProviderAzure, nil
	case ProviderGemini:
		return ProviderGemini, nil
	case ProviderBedrock:
		return ProviderBedrock, nil
	}
	return "", fmt.Errorf("unsupported provider: %q", s)
}

// SupportedProviders lists the providers the factory can build
func SupportedProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderAzure, ProviderGemini, ProviderBedrock}
}
