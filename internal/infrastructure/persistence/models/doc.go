// Package models contains the persistence models used by the GORM
// repositories. Domain aggregates with behavior-heavy state (invoices,
// ledger operations, partners) are mapped explicitly here so that schema
// concerns never leak into the domain layer. Identity aggregates carry
// their own column tags and are persisted directly.
package models
