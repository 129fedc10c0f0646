package main

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/finbook/backend/internal/config"
	"github.com/finbook/backend/internal/models"
	"github.com/finbook/backend/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(os.Getenv("FINBOOK_CONFIG"))
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// gin uses debug as the default mode, we use release for
	// security reasons
	gin.SetMode(cfg.Server.Mode)

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// The authentication middleware reads the token settings from the
	// environment, propagate them from the configuration
	_ = os.Setenv("FINBOOK_TOKEN_SECRET", cfg.Token.Secret)
	_ = os.Setenv("FINBOOK_TOKEN_EXPIRY_HOURS", strconv.Itoa(cfg.Token.ExpiryHours))

	// Create the directory the database lives in
	dataDir := filepath.Dir(cfg.Database.Path)
	err = os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database and migrate all models
	err = models.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// The base URL is used to build the resource links in responses
	apiURL, ok := os.LookupEnv("API_URL")
	if !ok {
		apiURL = "http://localhost:8080"
	}

	baseURL, err := url.Parse(apiURL)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, teardown, err := router.Config(baseURL)
	defer teardown()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	router.AttachRoutes(r.Group("/"))

	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
