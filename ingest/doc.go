// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ingest reads election files into a tabulate.Election.
// Layout problems come back as *FormatError carrying the offending line.
package ingest
