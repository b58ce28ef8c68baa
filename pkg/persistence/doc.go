// Package persistence stores completed usage sessions so room utilisation
// survives a process restart.
//
// Sessions are kept in a single JSON file per store. The file is small
// (one record per call) and is rewritten on every append.
package persistence
