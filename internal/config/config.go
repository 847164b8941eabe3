package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	MongoURI    string
	PostgresURI string
	RedisURI    string
	Port        string
	Environment string // ENV: production, development, etc.

	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL

	// Seeded administrator account. Created on startup when missing.
	AdminEmail    string
	AdminPassword string

	// SMTP for transactional mail. User/password fall back to the admin
	// account credentials, matching the original deployment.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	ContactEmail string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SentryDSN string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	adminEmail := getEnv("ADMIN_EMAIL", "")
	adminPassword := getEnv("ADMIN_PASSWORD", "")

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}

	return &Config{
		MongoURI:    getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/therapy_db")),
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/therapy_db?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:        getEnv("PORT", "8080"),
		Environment: env,

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,

		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,

		SMTPHost:     getEnv("SMTP_HOST", "smtp.office365.com"),
		SMTPPort:     smtpPort,
		SMTPUser:     getEnv("SMTP_USER", adminEmail),
		SMTPPassword: getEnv("SMTP_PASSWORD", adminPassword),
		MailFrom:     getEnv("MAIL_FROM", adminEmail),
		ContactEmail: getEnv("CONTACT_EMAIL", adminEmail),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
