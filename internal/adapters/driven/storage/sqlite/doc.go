// Package sqlite provides persistent storage for daysync using SQLite.
// One Store backs every metadata interface through wrapper types.
package sqlite
