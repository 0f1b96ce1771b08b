// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of ORM tags;
// each model has ToDomain / FromDomain mappers used by the repositories.
//
// Structure:
//   - identity.go: users
//   - catalog.go: product SKUs, variations, categories, category links, images
//   - trade.go: orders, order items, deliveries
//   - review.go: reviews, author links, reactions, replies
package models
