package main

import (
	"fmt"
	"os"

	"pharmacy/cmd"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func main() {
	configs := getConfigs()

	app := cmd.NewCompositionRoot(
		configs,
	)

	if err := app.JobManager().StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer app.JobManager().StopAll()

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:            goDotEnvVariable("HTTP_PORT"),
		LLMBaseURL:          goDotEnvVariable("LLM_BASE_URL"),
		LLMAPIKey:           goDotEnvVariable("LLM_API_KEY"),
		IntentModel:         goDotEnvVariable("INTENT_MODEL"),
		ExtractionModel:     goDotEnvVariable("EXTRACTION_MODEL"),
		WarehouseWebhookURL: goDotEnvVariable("WAREHOUSE_WEBHOOK_URL"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func startWebServer(app cmd.CompositionRoot, port string) {
	e := echo.New()
	app.Server().RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
