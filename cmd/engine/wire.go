package main

import (
	"github.com/prezboard/engine/modules/utilization/infrastructure/cache"
	"github.com/prezboard/engine/modules/utilization/infrastructure/erp"
	"github.com/prezboard/engine/modules/utilization/infrastructure/fetch"
	"github.com/prezboard/engine/modules/utilization/services"
	"github.com/prezboard/engine/pkg/configuration"
)

// buildService assembles the full pipeline from configuration: JSON-RPC
// client, session manager, call executor, caches, orchestrator, service.
func buildService(conf *configuration.Configuration) (*services.UtilizationService, error) {
	log := conf.Logger()

	client := erp.NewClient(erp.Credentials{
		URL:      conf.ERP.URL,
		Database: conf.ERP.Database,
		Username: conf.ERP.Username,
		Password: conf.ERP.Password,
	})
	sessions := erp.NewSessionManager(client, erp.SessionConfig{
		AuthTimeout:      conf.ERP.AuthTimeout,
		FreshFor:         conf.ERP.SessionFreshFor,
		HealthCheckEvery: conf.ERP.HealthCheckEvery,
		ConnectAttempts:  conf.ERP.ConnectAttempts,
		MaxBackoff:       conf.ERP.MaxConnectBackoff,
		FailureThreshold: conf.ERP.FailureThreshold,
	}, log)
	executor := erp.NewExecutor(sessions, client, erp.ExecutorConfig{
		CallTimeout: conf.ERP.CallTimeout,
		Attempts:    conf.ERP.CallAttempts,
		RetryDelay:  conf.ERP.RetryDelay,
	}, log)

	refs := cache.NewReferenceCache(conf.Cache.ReferenceTTL, conf.Cache.SweepEvery)
	holidays := cache.NewHolidayCache(conf.Cache.HolidayTTL, conf.Cache.SweepEvery)
	var results cache.ResultStore
	if conf.Cache.Storage == "redis" {
		store, err := cache.NewRedisResultStore(conf.Cache.RedisURL, conf.Cache.ResultTTL, log)
		if err != nil {
			return nil, err
		}
		results = store
	} else {
		results = cache.NewMemoryResultStore(conf.Cache.ResultTTL, conf.Cache.SweepEvery)
	}

	orchestrator := fetch.NewOrchestrator(executor, refs, holidays, fetch.Config{
		Workers:         conf.Fetch.Workers,
		SubFetchTimeout: conf.Fetch.SubFetchTimeout,
		PageSize:        conf.Fetch.PageSize,
	}, log)

	return services.NewUtilizationService(orchestrator, results, refs, holidays, services.Options{
		Pools:           conf.PoolNames(),
		DefaultWeekdays: conf.WorkWeekdays(),
	}, log), nil
}
