// Package clients owns the client registry: parsing raw names, the ordered
// set of registered clients, display and folder names, and the TOML file the
// registry is persisted to. Batch import from CSV/TSV and XLSX sheets feeds
// the same parsing rule as manual entry.
package clients
