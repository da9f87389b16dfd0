// Package sqlite is the SQLite adapter for console session persistence.
package sqlite
