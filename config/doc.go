// Package config loads the configuration of programs built on lazyseq.
//
// Values come from a YAML file, then LAZYSEQ_ prefixed environment variables,
// then an optional .env file, and are unmarshalled with Viper:
//
//	var cfg config.Config
//	if err := config.Load("catalog-sync", &cfg); err != nil {
//	    return err
//	}
//	fetch = fetcher.WithResilience[Item](cfg.Resilience("catalog"))(fetch)
//	items := lazy.FromPagedFetch(cfg.Paging.BatchSize, cfg.Paging.StartPage, fetch, cfg.Paging.Options()...)
//
// LAZYSEQ_PAGING_BATCH_SIZE=50 overrides paging.batch_size.
package config
