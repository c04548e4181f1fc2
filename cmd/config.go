package cmd

type Config struct {
	HTTPPort            string
	LLMBaseURL          string
	LLMAPIKey           string
	IntentModel         string
	ExtractionModel     string
	WarehouseWebhookURL string
}
