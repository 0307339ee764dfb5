// Package logger provides structured logging for prockit applications
// using zerolog.
//
// It supports JSON and console output formats, level configuration, and
// component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.Get("provider")
//	log.Info("algorithms loaded", logger.Fields("provider", "gdal", "count", 42))
package logger
