package config

import (
	"errors"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/logging"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// Config holds the project config values
type Config struct {
	Env            string
	Port           string
	BaseURL        string
	URL            string
	DatabaseName   string
	RequestTimeout time.Duration

	Redis      RedisConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Reconcile  ReconcileConfig

	// SearchRateLimit is the number of search requests allowed per IP per minute, 0 disables it
	SearchRateLimit int
}

// RedisConfig holds the cache connection values
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// JWTConfig holds the values used to verify bearer tokens issued by the identity provider
type JWTConfig struct {
	Secret string
	Issuer string
}

// CloudinaryConfig holds the object storage credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// ReconcileConfig holds the cron specs of the orphan reconciliation jobs
type ReconcileConfig struct {
	FavoritesCron  string
	VolunteersCron string
}

// New sets up all config related services
func New() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	conf := &Config{
		Env:            v.GetString("ENV"),
		Port:           v.GetString("PORT"),
		BaseURL:        v.GetString("BASE_URL"),
		URL:            v.GetString("DB_URI"),
		DatabaseName:   v.GetString("DB_NAME"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("CACHE_TTL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    v.GetString("CLOUDINARY_FOLDER"),
		},
		Reconcile: ReconcileConfig{
			FavoritesCron:  v.GetString("FAVORITES_RECONCILE_CRON"),
			VolunteersCron: v.GetString("VOLUNTEERS_RECONCILE_CRON"),
		},
		SearchRateLimit: v.GetInt("SEARCH_RATE_LIMIT"),
	}

	//setup zap logger and replace default logger
	logger, err := logging.New(conf.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("DB_NAME", "benevoclic")
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("CLOUDINARY_FOLDER", "announcements")

	// favorites every hour, volunteers every night at 3 AM UTC
	v.SetDefault("FAVORITES_RECONCILE_CRON", "0 * * * *")
	v.SetDefault("VOLUNTEERS_RECONCILE_CRON", "0 3 * * *")

	v.SetDefault("SEARCH_RATE_LIMIT", 120)
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(zap.Error(err)).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Code: http.StatusText(httpStatusCode), Message: message})
	_, _ = w.Write(b)
}

// AppErrorStatus writes a typed domain error, logging only server side failures
func AppErrorStatus(w http.ResponseWriter, err error) {
	appErr := apperrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		zap.S().Errorw(appErr.Message, "code", appErr.Code, "error", err)
	} else {
		zap.S().Debugw(appErr.Message, "code", appErr.Code, "error", err)
	}

	message := appErr.Message
	var validationErr *apperrors.Error
	if errors.As(err, &validationErr) && validationErr.Code == apperrors.ErrValidation.Code && validationErr.Err != nil {
		message = validationErr.Err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	b, _ := json.Marshal(models.ErrorMessageResponse{Code: appErr.Code, Message: message})
	_, _ = w.Write(b)
}
