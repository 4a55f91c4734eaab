// Package logger provides structured logging for lazyseq using zerolog.
//
// Sequences and page sources log at debug level through a *Logger passed in
// with an option; nothing is logged unless a logger is supplied. The package
// also keeps a global logger for applications that prefer one.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("indexer").WithComponent("paging")
//	log.Debug("page fetched", logger.Fields(logger.FieldPage, 3, logger.FieldItems, 50))
package logger
