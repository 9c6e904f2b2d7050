package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"transferguard/internal/audit"
	"transferguard/internal/compliance"
	"transferguard/internal/compliance/admin"
	compliancehandler "transferguard/internal/compliance/handler"
	compliancemetrics "transferguard/internal/compliance/metrics"
	"transferguard/internal/compliance/rules"
	blackliststore "transferguard/internal/compliance/store/blacklist"
	lockupstore "transferguard/internal/compliance/store/lockup"
	supplystore "transferguard/internal/compliance/store/supply"
	velocitystore "transferguard/internal/compliance/store/velocity"
	httpapi "transferguard/internal/http"
	"transferguard/internal/identity"
	"transferguard/internal/platform/config"
	"transferguard/internal/platform/httpserver"
	"transferguard/internal/platform/kafka"
	"transferguard/internal/platform/logger"
	"transferguard/internal/platform/middleware"
	platformredis "transferguard/internal/platform/redis"
	"transferguard/internal/policy"
	policyhandler "transferguard/internal/policy/handler"
	policymetrics "transferguard/internal/policy/metrics"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// Backends. Each is optional; absent backends fall back to in-memory
	// stores.
	var db *sql.DB
	if cfg.Postgres.DSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		log.Info("postgres connected")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		log.Info("kafka producer ready", "topic", cfg.Kafka.Topic)
	}

	// Audit trail: always log events; additionally ship them to Kafka when
	// brokers are configured.
	sinks := []audit.Sink{audit.NewSlogSink(log)}
	if producer != nil {
		sinks = append(sinks, audit.NewKafkaSink(producer))
	}
	auditPublisher := audit.NewPublisher(sinks, audit.WithLogger(log))

	// Stores.
	var blacklist rules.BlacklistStore = blackliststore.NewMemoryStore()
	var lockups rules.LockupStore = lockupstore.NewMemoryStore()
	var policyStore policy.Store = policy.NewMemoryStore()
	if db != nil {
		blacklist = blackliststore.NewPostgres(db)
		lockups = lockupstore.NewPostgres(db)
		policyStore = policy.NewPostgres(db)
	}
	var windows rules.WindowStore = velocitystore.NewMemoryStore()
	if redisClient != nil {
		windows = velocitystore.NewRedisStore(redisClient.Client)
	}
	supply := supplystore.NewMemoryStore()
	resolver := identity.NewStaticResolver()

	// Rules engine over the built-in rule set.
	engineMetrics := compliancemetrics.New()
	engine, velocityRule, err := buildEngine(cfg, log, engineMetrics, auditPublisher,
		identity.NewExpiryGuard(resolver), blacklist, lockups, windows, supply)
	if err != nil {
		return err
	}

	// Policy registry, coupled to the engine only through the activation
	// hook.
	registry, err := policy.NewRegistry(policyStore,
		policy.WithLogger(log),
		policy.WithMetrics(policymetrics.New()),
		policy.WithAuditPublisher(auditPublisher),
		policy.WithConfig(&policy.Config{
			DefaultActivationDelay: cfg.PolicyDefaultDelay,
			MinActivationDelay:     cfg.PolicyMinDelay,
		}),
		policy.WithActivationHook(func(ctx context.Context, p *policy.Policy) {
			log.InfoContext(ctx, "active policy changed",
				"version", p.Version,
				"config_ref", p.ConfigRef,
				"rule_set_version", engine.ActiveRuleSetVersion(),
			)
		}),
	)
	if err != nil {
		return err
	}

	adminService, err := admin.New(engine, blacklist, lockups,
		admin.WithLogger(log),
		admin.WithAuditPublisher(auditPublisher),
		admin.WithAttestationWriter(resolver),
		admin.WithSupplyWriter(supply),
	)
	if err != nil {
		return err
	}

	health := map[string]httpapi.HealthChecker{}
	if db != nil {
		health["postgres"] = pingChecker{db}
	}
	if redisClient != nil {
		health["redis"] = redisClient
	}

	var recorder compliancehandler.TransferRecorder
	if velocityRule != nil {
		recorder = velocityRule
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		AdminValidator: middleware.NewAdminValidator(cfg.JWTSigningKey),
		Public: []httpapi.Registrar{
			compliancehandler.New(engine, recorder, log, engineMetrics, auditPublisher),
		},
		Admin: []httpapi.Registrar{
			admin.NewHandler(adminService, log),
			policyhandler.New(registry, log),
		},
		Health: health,
	})

	srv := httpserver.New(cfg.Addr, router)

	errs := make(chan error, 1)
	go func() {
		log.Info("starting transferguard", "addr", cfg.Addr, "mode", engine.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildEngine assembles the built-in rule set in evaluation order. The
// blacklist and jurisdiction rules are mandatory: no evaluation mode may
// approve an operation they reject.
func buildEngine(
	cfg config.Config,
	log *slog.Logger,
	m *compliancemetrics.Metrics,
	auditPublisher *audit.Publisher,
	resolver identity.Resolver,
	blacklist rules.BlacklistStore,
	lockups rules.LockupStore,
	windows rules.WindowStore,
	supply rules.SupplyReader,
) (*compliance.Engine, *rules.VelocityRule, error) {
	minActor, err := identity.ParseTier(cfg.Rules.KYCMinTier)
	if err != nil {
		return nil, nil, err
	}
	minCounterparty, err := identity.ParseTier(cfg.Rules.KYCMinCounterpartyTier)
	if err != nil {
		return nil, nil, err
	}

	ruleSet := compliance.NewRuleSet()
	add := func(rule compliance.Rule, priority int, mandatory bool) {
		if err == nil {
			err = ruleSet.AddRule(rule, priority, mandatory)
		}
	}

	add(rules.NewBlacklist(blacklist), 10, true)
	add(rules.NewJurisdiction(resolver, rules.JurisdictionMode(cfg.Rules.JurisdictionMode), cfg.Rules.JurisdictionCodes), 20, true)
	add(rules.NewKYCTier(resolver, minActor, rules.WithCounterpartyMinimum(minCounterparty)), 30, false)
	add(rules.NewLockup(lockups), 40, false)
	if cfg.Rules.MaxSupply > 0 {
		add(rules.NewSupplyCap(supply, cfg.Rules.MaxSupply), 50, false)
	}
	var velocityRule *rules.VelocityRule
	if cfg.Rules.VelocityMaxAmount > 0 {
		velocityRule = rules.NewVelocity(windows, cfg.Rules.VelocityMaxAmount, cfg.Rules.VelocityWindow)
		add(velocityRule, 60, false)
	}
	if err != nil {
		return nil, nil, err
	}

	engine, err := compliance.NewEngine(ruleSet,
		compliance.WithLogger(log),
		compliance.WithMetrics(m),
		compliance.WithAuditPublisher(auditPublisher),
		compliance.WithMode(compliance.EvaluationMode(cfg.EvaluationMode)),
	)
	if err != nil {
		return nil, nil, err
	}
	return engine, velocityRule, nil
}

type pingChecker struct {
	db *sql.DB
}

func (c pingChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
