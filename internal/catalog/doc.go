// Package catalog defines the cached entity types (products, categories,
// users, reviews), their sort rules, partial product patches, and input
// validation for mutations.
//
// Products, users and categories sort by name with an English collator;
// reviews sort newest first. Collections and Tables bundle the four entity
// collections in mutable and frozen form.
package catalog
