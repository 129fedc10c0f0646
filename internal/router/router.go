package router

import (
	"net/http"
	"net/url"
	"os"
	"strings"

	docs "github.com/finbook/backend/api"
	"github.com/finbook/backend/internal/controllers/healthz"
	v1 "github.com/finbook/backend/internal/controllers/v1"
	"github.com/finbook/backend/internal/httputil"
	"github.com/finbook/backend/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// This is set at build time, see Makefile.
var version = "0.0.0"

// Config sets up the router with all middlewares. The returned teardown
// function releases resources held by the router, it has to be called
// when the router is discarded.
func Config(url *url.URL) (*gin.Engine, func(), error) {
	// Set up the router and middlewares
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(URLMiddleware(url))

	if err := registerPrometheusMetrics(); err != nil {
		return nil, func() {}, err
	}
	r.Use(MetricsMiddleware())

	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, logger zerolog.Logger) zerolog.Logger {
			return logger.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	// CORS settings
	allowOrigins, ok := os.LookupEnv("CORS_ALLOW_ORIGINS")
	if ok {
		log.Debug().Str("CORS Allowed Origins", allowOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Fields(allowOrigins),
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	log.Debug().Str("API Base URL", url.String()).Str("Host", url.Host).Str("Path", url.Path).Msg("Router")
	log.Info().Str("version", version).Msg("Router")

	docs.SwaggerInfo.Host = url.Host
	docs.SwaggerInfo.BasePath = url.Path
	docs.SwaggerInfo.Title = "Finbook"
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Description = "The backend for Finbook, a multi user bookkeeping solution for personal finances."

	teardown := func() {
		unregisterPrometheusMetrics()
	}

	return r, teardown, nil
}

// AttachRoutes attaches the API routes to the router group that is passed in.
// Separating this from Config() allows us to attach it to different
// paths for different use cases.
func AttachRoutes(group *gin.RouterGroup) {
	group.GET("", GetRoot)
	group.OPTIONS("", OptionsRoot)
	group.GET("/version", GetVersion)
	group.OPTIONS("/version", OptionsVersion)

	// pprof performance profiles
	enablePprof, ok := os.LookupEnv("ENABLE_PPROF")
	if ok && enablePprof == "true" {
		pprof.RouteRegister(group, "debug/pprof")
	}

	group.GET("/metrics", gin.WrapH(promhttp.Handler()))
	group.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	healthz.RegisterRoutes(group.Group("/healthz"))

	// API v1 setup
	v1Group := group.Group("/v1")
	{
		v1Group.GET("", GetV1)
		v1Group.OPTIONS("", OptionsV1)
	}

	// Registration and login work without a token
	v1.RegisterAuthRoutes(v1Group)

	// Everything else requires an authenticated user
	authenticated := v1Group.Group("", v1.Authenticate())
	v1.RegisterUserRoutes(authenticated.Group("/users"))
	v1.RegisterWalletRoutes(authenticated.Group("/wallets"))
	v1.RegisterPeriodRoutes(authenticated.Group("/periods"))
	v1.RegisterDepositRoutes(authenticated.Group("/deposits"))
	v1.RegisterEntityRoutes(authenticated.Group("/entities"))
	v1.RegisterCategoryRoutes(authenticated.Group("/categories"))
	v1.RegisterPredictionRoutes(authenticated.Group("/predictions"))
	v1.RegisterIncomeRoutes(authenticated.Group("/incomes"))
	v1.RegisterExpenseRoutes(authenticated.Group("/expenses"))
	v1.RegisterDashboardRoutes(authenticated.Group("/dashboard"))
	v1.RegisterImportRoutes(authenticated.Group("/import"))
	v1.RegisterExportRoutes(authenticated.Group("/export"), version)
}

type RootResponse struct {
	Links RootLinks `json:"links"`
}

type RootLinks struct {
	Docs    string `json:"docs" example:"https://example.com/api/docs/index.html"` // Swagger API documentation
	Healthz string `json:"healthz" example:"https://example.com/api/healthz"`      // Endpoint returning the application health
	Version string `json:"version" example:"https://example.com/api/version"`      // Endpoint returning the version of the backend
	Metrics string `json:"metrics" example:"https://example.com/api/metrics"`      // Endpoint returning Prometheus metrics
	V1      string `json:"v1" example:"https://example.com/api/v1"`                // List endpoint for all v1 endpoints
}

// GetRoot returns the link list for the API root
//
//	@Summary		API root
//	@Description	Entrypoint for the API, listing all endpoints
//	@Tags			General
//	@Success		200	{object}	RootResponse
//	@Router			/ [get]
func GetRoot(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, RootResponse{
		Links: RootLinks{
			Docs:    url + "/docs/index.html",
			Healthz: url + "/healthz",
			Version: url + "/version",
			Metrics: url + "/metrics",
			V1:      url + "/v1",
		},
	})
}

type VersionResponse struct {
	Data VersionObject `json:"data"` // Data object for the version endpoint
}
type VersionObject struct {
	Version string `json:"version" example:"1.1.0"` // the running version of the Finbook backend
}

// GetVersion returns the API version object
//
//	@Summary		API version
//	@Description	Returns the software version of the API
//	@Tags			General
//	@Success		200	{object}	VersionResponse
//	@Router			/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Data: VersionObject{
			Version: version,
		},
	})
}

// OptionsRoot returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/ [options]
func OptionsRoot(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsVersion returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/version [options]
func OptionsVersion(c *gin.Context) {
	httputil.OptionsGet(c)
}

type V1Response struct {
	Links V1Links `json:"links"` // Links for the v1 API
}

type V1Links struct {
	Register    string `json:"register" example:"https://example.com/api/v1/register"`       // URL of the registration endpoint
	Login       string `json:"login" example:"https://example.com/api/v1/login"`             // URL of the login endpoint
	Me          string `json:"me" example:"https://example.com/api/v1/users/me"`             // URL of the authenticated user endpoint
	Wallets     string `json:"wallets" example:"https://example.com/api/v1/wallets"`         // URL of wallet list endpoint
	Periods     string `json:"periods" example:"https://example.com/api/v1/periods"`         // URL of period list endpoint
	Deposits    string `json:"deposits" example:"https://example.com/api/v1/deposits"`       // URL of deposit list endpoint
	Entities    string `json:"entities" example:"https://example.com/api/v1/entities"`       // URL of entity list endpoint
	Categories  string `json:"categories" example:"https://example.com/api/v1/categories"`   // URL of category list endpoint
	Predictions string `json:"predictions" example:"https://example.com/api/v1/predictions"` // URL of expense prediction list endpoint
	Incomes     string `json:"incomes" example:"https://example.com/api/v1/incomes"`         // URL of income list endpoint
	Expenses    string `json:"expenses" example:"https://example.com/api/v1/expenses"`       // URL of expense list endpoint
	Dashboard   string `json:"dashboard" example:"https://example.com/api/v1/dashboard"`     // URL of the dashboard endpoint
	Import      string `json:"import" example:"https://example.com/api/v1/import"`           // URL of the CSV import endpoint
	Export      string `json:"export" example:"https://example.com/api/v1/export"`           // URL of the export endpoint
}

// GetV1 returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	V1Response
//	@Router			/v1 [get]
func GetV1(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, V1Response{
		Links: V1Links{
			Register:    url + "/v1/register",
			Login:       url + "/v1/login",
			Me:          url + "/v1/users/me",
			Wallets:     url + "/v1/wallets",
			Periods:     url + "/v1/periods",
			Deposits:    url + "/v1/deposits",
			Entities:    url + "/v1/entities",
			Categories:  url + "/v1/categories",
			Predictions: url + "/v1/predictions",
			Incomes:     url + "/v1/incomes",
			Expenses:    url + "/v1/expenses",
			Dashboard:   url + "/v1/dashboard",
			Import:      url + "/v1/import",
			Export:      url + "/v1/export",
		},
	})
}

// OptionsV1 returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func OptionsV1(c *gin.Context) {
	httputil.OptionsGet(c)
}
