package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Reifenservice-api/pkg/config"
	"github.com/jhoicas/Reifenservice-api/pkg/logger"
)

const defaultMaxConns = 8

// PoolConfig traduce DBConfig a la configuración de pgxpool. DATABASE_URL tiene prioridad
// sobre DB_HOST, DB_PORT, etc. Con log != nil las consultas lentas o fallidas se registran.
func PoolConfig(cfg config.DBConfig, log *logger.Logger) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	// La generación es por lotes mensuales: pocas conexiones bastan.
	pc.MaxConns = int32(cfg.MaxConns)
	if pc.MaxConns <= 0 {
		pc.MaxConns = defaultMaxConns
	}
	pc.MinConns = 1
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 15 * time.Minute
	pc.HealthCheckPeriod = time.Minute

	// NUMERIC -> decimal.Decimal; los importes nunca pasan por float.
	pc.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	if log != nil {
		pc.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   queryLogger(log.Component("postgres")),
			LogLevel: tracelog.LogLevelWarn,
		}
	}
	return pc, nil
}

// NewPool abre el pool y comprueba la conexión.
func NewPool(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	pc, err := PoolConfig(cfg, log)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

func queryLogger(log *logger.Logger) tracelog.LoggerFunc {
	return func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		log.WithLevel(zerologLevel(level)).Fields(data).Msg(msg)
	}
}

func zerologLevel(level tracelog.LogLevel) zerolog.Level {
	switch level {
	case tracelog.LogLevelTrace:
		return zerolog.TraceLevel
	case tracelog.LogLevelDebug:
		return zerolog.DebugLevel
	case tracelog.LogLevelInfo:
		return zerolog.InfoLevel
	case tracelog.LogLevelWarn:
		return zerolog.WarnLevel
	case tracelog.LogLevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.NoLevel
}
