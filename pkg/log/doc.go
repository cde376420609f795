// Package log provides log-majin's structured logging facade and utilities.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a Formatter
// (text or JSON) and one or more Outputs.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("commit"))
//	l.Info("log committed", log.Str("log_id", id))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config (level plus
// "text" or "json" format). To integrate with libraries writing through the
// standard library logger, use RedirectStdLog.
package log
