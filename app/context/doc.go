// Package context holds the state shared by the app and cli packages: the
// filesystem, environment, logger, loaded configuration and history store.
//
// It is a separate package so that cli can use it without importing app.
package context
