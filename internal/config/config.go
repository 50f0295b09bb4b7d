package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	GinMode      string
	LogMode      string
	AllowOrigins []string

	LLMBaseURL    string
	LLMAPIKey     string
	LLMProvider   string
	QuestionModel string
	TipModel      string
	LLMTimeout    time.Duration
	QuestionCount int

	ExamDurationSeconds int
	TickInterval        time.Duration
	AttemptIdleTTL      time.Duration

	RabbitMQURI      string
	RabbitMQExchange string

	RedisURI            string
	GenerationRateLimit int
	GenerationWindow    time.Duration

	ConsulAddress  string
	ServiceName    string
	ServiceID      string
	ServiceAddress string
	ServiceVersion string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	serviceName := getEnvOrDefault("SERVICE_NAME", "mocktest-service")
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "1"
	}

	return &Config{
		Port:         getEnvOrDefault("PORT", "6666"),
		GinMode:      getEnvOrDefault("GIN_MODE", "debug"),
		LogMode:      getEnvOrDefault("LOG_MODE", "dev"),
		AllowOrigins: getEnvList("ALLOW_ORIGINS", []string{"http://localhost:3000"}),

		LLMBaseURL:    getEnvOrDefault("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMAPIKey:     getEnvOrDefault("LLM_API_KEY", ""),
		LLMProvider:   getEnvOrDefault("LLM_PROVIDER", "gemini"),
		QuestionModel: getEnvOrDefault("QUESTION_MODEL", "gemini-3-pro-preview"),
		TipModel:      getEnvOrDefault("TIP_MODEL", "gemini-3-flash-preview"),
		LLMTimeout:    time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		QuestionCount: getEnvInt("QUESTION_COUNT", 40),

		ExamDurationSeconds: getEnvInt("EXAM_DURATION_SECONDS", 1800),
		TickInterval:        time.Duration(getEnvInt("EXAM_TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		AttemptIdleTTL:      time.Duration(getEnvInt("ATTEMPT_IDLE_TTL_MINUTES", 120)) * time.Minute,

		RabbitMQURI:      getEnvOrDefault("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnvOrDefault("RABBITMQ_EXCHANGE", "mocktest.events"),

		RedisURI:            getEnvOrDefault("REDIS_URI", ""),
		GenerationRateLimit: getEnvInt("GENERATION_RATE_LIMIT", 10),
		GenerationWindow:    time.Duration(getEnvInt("GENERATION_RATE_WINDOW_SECONDS", 3600)) * time.Second,

		ConsulAddress:  getEnvOrDefault("CONSUL_ADDRESS", ""),
		ServiceName:    serviceName,
		ServiceID:      getEnvOrDefault("SERVICE_ID", serviceName+"-"+hostname),
		ServiceAddress: getEnvOrDefault("SERVICE_ADDRESS", serviceName),
		ServiceVersion: getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		log.Printf("Invalid value for %s: %q, using %d", key, v, defaultValue)
		return defaultValue
	}
	return i
}

func getEnvList(key string, defaultValue []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
