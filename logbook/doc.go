// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package logbook defines the radio contact log entities persisted through
// sqlitestore: LogEntry (one contact) and Race (a contest or event that
// groups contacts), together with their migration histories.
//
// The LogEntry history includes a data-transformation step that rewrites the
// first release's latitude/longitude columns into Maidenhead locators.
package logbook
