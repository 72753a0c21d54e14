// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package logbook

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS results (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at TIMESTAMP NOT NULL,
    title       TEXT NOT NULL,
    operation   TEXT NOT NULL,
    value       REAL NOT NULL,
    precision   REAL NOT NULL,
    unit        TEXT NOT NULL,
    source      TEXT
);
CREATE INDEX IF NOT EXISTS idx_results_recorded_at ON results (recorded_at);`

	insertResultSQL = `
INSERT INTO results (
                     recorded_at,
                     title,
                     operation,
                     value,
                     precision,
                     unit,
                     source)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectResultsSQL = `
SELECT
    id,
    recorded_at,
    title,
    operation,
    value,
    precision,
    unit,
    source
FROM results
ORDER BY recorded_at, id`
)
