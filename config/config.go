package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	ServiceName string
	ServiceHost string

	MongoURI string
	MongoDB  string

	ConsulAddress string

	JWTSecret string

	LogLevel string
	LogFile  string

	// Feature flags selecting live vs mock channel adapters.
	UseFcmService   bool
	UseEmailService bool
	UseSmsService   bool

	FcmCredentialsFile string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
	FromName  string

	SmsAPIURL   string
	SmsAPIKey   string
	SmsSenderID string

	// Device tokens unused for longer than this are deactivated by the
	// nightly sweep. Zero disables the sweep.
	TokenRetentionDays int
}

func LoadConfig() *Config {
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SERVICE_NAME", "incident-service")
	viper.SetDefault("SERVICE_HOST", "localhost")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "eerc")
	viper.SetDefault("CONSUL_ADDRESS", "localhost:8500")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "logs/incident-service.log")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("FROM_NAME", "EERC Notifications")
	viper.SetDefault("TOKEN_RETENTION_DAYS", 180)

	return &Config{
		Port:        viper.GetString("PORT"),
		ServiceName: viper.GetString("SERVICE_NAME"),
		ServiceHost: viper.GetString("SERVICE_HOST"),

		MongoURI: viper.GetString("MONGO_URI"),
		MongoDB:  viper.GetString("MONGO_DB"),

		ConsulAddress: viper.GetString("CONSUL_ADDRESS"),

		JWTSecret: viper.GetString("JWT_SECRET"),

		LogLevel: viper.GetString("LOG_LEVEL"),
		LogFile:  viper.GetString("LOG_FILE"),

		UseFcmService:   viper.GetBool("USE_FCM_SERVICE"),
		UseEmailService: viper.GetBool("USE_EMAIL_SERVICE"),
		UseSmsService:   viper.GetBool("USE_SMS_SERVICE"),

		FcmCredentialsFile: viper.GetString("FCM_CREDENTIALS_FILE"),

		SMTPHost:  viper.GetString("SMTP_HOST"),
		SMTPPort:  viper.GetInt("SMTP_PORT"),
		SMTPUser:  viper.GetString("SMTP_USER"),
		SMTPPass:  viper.GetString("SMTP_PASS"),
		FromEmail: viper.GetString("FROM_EMAIL"),
		FromName:  viper.GetString("FROM_NAME"),

		SmsAPIURL:   viper.GetString("SMS_API_URL"),
		SmsAPIKey:   viper.GetString("SMS_API_KEY"),
		SmsSenderID: viper.GetString("SMS_SENDER_ID"),

		TokenRetentionDays: viper.GetInt("TOKEN_RETENTION_DAYS"),
	}
}
