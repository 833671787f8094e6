// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer carries no ORM tags;
// each model converts with ToDomain and a ...ModelFromDomain constructor.
//
// Structure:
//   - base.go: shared columns (BaseModel, WorkspaceAggregateModel)
//   - trade.go: orders, order items, payments, purchase orders
//   - invoice.go: invoice headers and copied lines, number sequences
//   - inventory.go: stock locations, movements and cached levels
//   - identity.go: workspace memberships
package models
