package boot

import (
	"context"
	"time"

	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/logging"
	redisrepo "go-rbacadmin/internal/repository/redis"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// initTracing otel.enable=false 时返回 nil；db / r 可为空
func initTracing(c *config.Config, l *logging.Logger, db *gorm.DB, r *redisrepo.Client) *trace.TracerProvider {
	// kafka header 注入与提取依赖全局 propagator，未开启导出也要设置
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	if !c.OTel.Enable {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.OTel.Endpoint)}
	if c.OTel.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		l.Error("otel_exporter_init_failed", zap.Error(err))
		return nil
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.AppMeta.Name),
		semconv.ServiceVersionKey.String(c.AppMeta.Version),
		semconv.DeploymentEnvironmentKey.String(c.AppMeta.Env),
	))
	sampler := trace.ParentBased(trace.TraceIDRatioBased(c.OTel.SamplerRatio))
	tp := trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res), trace.WithSampler(sampler))
	otel.SetTracerProvider(tp)
	l.Info("otel_tracer_provider_initialized", zap.String("endpoint", c.OTel.Endpoint))

	if db != nil {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			l.Error("gorm_tracing_plugin_failed", zap.Error(err))
		}
	}
	if r != nil {
		if err := redisotel.InstrumentTracing(r.Client); err != nil {
			l.Error("redis_tracing_hook_failed", zap.Error(err))
		}
	}
	return tp
}

func shutdownTracing(tp *trace.TracerProvider, l *logging.Logger) {
	if tp == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		l.Error("otel_tracer_shutdown_error", zap.Error(err))
	}
}
