// Package logger provides structured logging for twitterdl, backed by
// zerolog. A package-level logger is available through GetLogger; components
// that want scoped fields derive children with WithField/WithFields.
package logger
