// Package db embeds the SQL schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for the shop tables: users, categories, products,
// coupons, cart_items, orders, order_items, and reviews.
//
//go:embed migrations/001_schema.sql
var Schema string
