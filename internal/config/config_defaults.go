package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIBaseURL is the local development endpoint of the tracking backend.
const DefaultAPIBaseURL = "http://localhost:8080/api"

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Backend API
	v.SetDefault("api.baseURL", DefaultAPIBaseURL)
	v.SetDefault("api.userAgent", "applytrack")

	// Circuit breaker is opt-in: every call is a single attempt either way
	v.SetDefault("api.circuitBreaker.enabled", false)
	v.SetDefault("api.circuitBreaker.maxRequests", 1)
	v.SetDefault("api.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("api.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("api.circuitBreaker.minRequests", 5)
	v.SetDefault("api.circuitBreaker.failureThreshold", 0.6)

	// Session server
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	v.SetDefault("server.maxRequestSize", 12*1024*1024) // room for a maximum size upload plus form overhead
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 120)
	v.SetDefault("server.rateLimit.burstCapacity", 20)
	v.SetDefault("server.rateLimit.byIP", true)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB, resumes may be PDF or DOCX

	// Drafts; an empty path resolves to $HOME/.applytrack/drafts.yaml
	v.SetDefault("drafts.path", "")
	v.SetDefault("drafts.watch", true)
	v.SetDefault("drafts.debounceDelay", 500*time.Millisecond)

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "applytrack")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.apiRequests", true)
	v.SetDefault("observability.customMetrics.businessMetrics", true)
	v.SetDefault("observability.customMetrics.trackRateLimits", true)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
