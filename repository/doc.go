// Package repository exposes typed CRUD repositories over a dynamically typed
// data source. DefaultCrudRepository binds one entity class to one data source,
// normalises the promise-like values the persisted model returns and hydrates
// every raw record into an entity.
package repository
