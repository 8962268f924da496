package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"applytrack/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricJobAnalyzed         = "job_analyzed"
	MetricResumeUploaded      = "resume_uploaded"
	MetricCoverLetterUploaded = "cover_letter_uploaded"
	MetricResumeOptimized     = "resume_optimized"
	MetricApplicationCreated  = "application_created"
	MetricStatusChanged       = "status_changed"
	MetricNoteAdded           = "note_added"
	MetricRateLimitHit        = "rate_limit_hit"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics for applytrack. A nil *Metrics records nothing.
type Metrics struct {
	// Backend API metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCount    metric.Int64Counter
	APIErrorCount      metric.Int64Counter

	// Business metrics
	JobsAnalyzed         metric.Int64Counter
	ResumesUploaded      metric.Int64Counter
	CoverLettersUploaded metric.Int64Counter
	ResumesOptimized     metric.Int64Counter
	ApplicationsCreated  metric.Int64Counter
	StatusChanges        metric.Int64Counter
	NotesAdded           metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter

	toggles config.CustomMetricsConfig
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config         ObservabilityConfig
	fullConfig     *config.Config
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	res, err := om.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// createResource creates the OpenTelemetry resource shared by traces and metrics
func (om *ObservabilityManager) createResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing(res *resource.Resource) error {
	var exporter trace.SpanExporter
	var err error

	if om.config.ConsoleOutput {
		// Console exporter for development
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	} else if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		exporter, err = om.createOTLPExporter()
	} else {
		exporter = &noOpSpanExporter{}
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics(res *resource.Resource) error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	// If no readers configured, use manual reader as fallback
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// setupConsoleReader sets up console metric reader if enabled
func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

// setupOTLPReader sets up OTLP metric reader if enabled
func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	*readers = append(*readers, otlpReader)
	return nil
}

// setupPrometheusReader sets up Prometheus metric reader and its scrape server if enabled
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	if prometheusReader == nil {
		return nil
	}

	*readers = append(*readers, prometheusReader)

	shutdown, err := StartPrometheusServer(prometheusMux, om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to start Prometheus server: %w", err)
	}
	om.shutdownFuncs = append(om.shutdownFuncs, shutdown)
	return nil
}

// initCustomMetrics creates all custom metrics for applytrack
func (om *ObservabilityManager) initCustomMetrics() error {
	metrics, err := NewMetrics(om.meterProvider.Meter(om.config.ServiceName), om.metricToggles())
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

// NewMetrics creates the applytrack instruments on meter. toggles switches
// groups of instruments off without removing them.
func NewMetrics(meter metric.Meter, toggles config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{toggles: toggles}

	if err := m.createAPIMetrics(meter); err != nil {
		return nil, err
	}

	if err := m.createBusinessMetrics(meter); err != nil {
		return nil, err
	}

	if err := m.createRateLimitMetrics(meter); err != nil {
		return nil, err
	}

	return m, nil
}

func (om *ObservabilityManager) metricToggles() config.CustomMetricsConfig {
	if om.fullConfig == nil {
		return config.CustomMetricsConfig{APIRequests: true, BusinessMetrics: true, TrackRateLimits: true}
	}
	return om.fullConfig.Observability.CustomMetrics
}

// createAPIMetrics creates metrics for calls to the tracking backend
func (m *Metrics) createAPIMetrics(meter metric.Meter) error {
	var err error

	m.APIRequestDuration, err = meter.Float64Histogram(
		"applytrack_api_request_duration_seconds",
		metric.WithDescription("Time spent waiting for the tracking backend"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create API request duration metric: %w", err)
	}

	m.APIRequestCount, err = meter.Int64Counter(
		"applytrack_api_requests_total",
		metric.WithDescription("Total number of requests sent to the tracking backend"),
	)
	if err != nil {
		return fmt.Errorf("failed to create API request count metric: %w", err)
	}

	m.APIErrorCount, err = meter.Int64Counter(
		"applytrack_api_errors_total",
		metric.WithDescription("Total number of failed requests to the tracking backend"),
	)
	if err != nil {
		return fmt.Errorf("failed to create API error count metric: %w", err)
	}

	return nil
}

// createBusinessMetrics creates business-related metrics
func (m *Metrics) createBusinessMetrics(meter metric.Meter) error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&m.JobsAnalyzed, "applytrack_jobs_analyzed_total", "Total number of job descriptions analyzed"},
		{&m.ResumesUploaded, "applytrack_resumes_uploaded_total", "Total number of resumes uploaded"},
		{&m.CoverLettersUploaded, "applytrack_cover_letters_uploaded_total", "Total number of cover letters uploaded"},
		{&m.ResumesOptimized, "applytrack_resumes_optimized_total", "Total number of resume optimizations"},
		{&m.ApplicationsCreated, "applytrack_applications_created_total", "Total number of applications created"},
		{&m.StatusChanges, "applytrack_status_changes_total", "Total number of application status changes"},
		{&m.NotesAdded, "applytrack_notes_added_total", "Total number of application notes added"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}

	return nil
}

// createRateLimitMetrics creates rate limiting metrics
func (m *Metrics) createRateLimitMetrics(meter metric.Meter) error {
	var err error

	m.RateLimitHits, err = meter.Int64Counter(
		"applytrack_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance, nil when observability is disabled
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil {
		return nil
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TrackAPIRequest instruments one call to the tracking backend with a span and
// request metrics. fn returns the HTTP status it received, 0 when none.
func (m *Metrics) TrackAPIRequest(ctx context.Context, method, endpoint string, fn func(context.Context) (int, error)) error {
	ctx, span := otel.Tracer("applytrack.api").Start(ctx, "api."+method,
		oteltrace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("applytrack.endpoint", endpoint),
		))
	defer span.End()

	start := time.Now()
	status, err := fn(ctx)
	duration := time.Since(start).Seconds()

	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if m != nil && m.toggles.APIRequests {
		m.recordAPIMetrics(ctx, method, status, err, duration)
	}

	return err
}

// recordAPIMetrics records request metrics. Endpoints are left out of the
// attributes because they embed record ids.
func (m *Metrics) recordAPIMetrics(ctx context.Context, method string, status int, err error, duration float64) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status", status),
		attribute.Bool("success", err == nil),
	)

	if m.APIRequestDuration != nil {
		m.APIRequestDuration.Record(ctx, duration, attrs)
	}
	if m.APIRequestCount != nil {
		m.APIRequestCount.Add(ctx, 1, attrs)
	}
	if err != nil && m.APIErrorCount != nil {
		m.APIErrorCount.Add(ctx, 1, attrs)
	}
}

// RecordBusinessMetric records business-specific metrics
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	if m == nil {
		return
	}

	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)

	if metricType == MetricRateLimitHit {
		if m.toggles.TrackRateLimits {
			addCounter(ctx, m.RateLimitHits, attrs)
		}
		return
	}

	if !m.toggles.BusinessMetrics {
		return
	}
	addCounter(ctx, m.counterFor(metricType), attrs)
}

// counterFor maps a business metric type onto its counter
func (m *Metrics) counterFor(metricType string) metric.Int64Counter {
	switch metricType {
	case MetricJobAnalyzed:
		return m.JobsAnalyzed
	case MetricResumeUploaded:
		return m.ResumesUploaded
	case MetricCoverLetterUploaded:
		return m.CoverLettersUploaded
	case MetricResumeOptimized:
		return m.ResumesOptimized
	case MetricApplicationCreated:
		return m.ApplicationsCreated
	case MetricStatusChanged:
		return m.StatusChanges
	case MetricNoteAdded:
		return m.NotesAdded
	}
	return nil
}

func addCounter(ctx context.Context, counter metric.Int64Counter, attrs []attribute.KeyValue) {
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// No-op exporter for when neither console nor OTLP output is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

// getServiceInstanceID returns the service instance ID from config
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
